package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/providex/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const jsonCatalog = `[
  {"id": 1, "first_name": "Ada", "last_name": "Byron", "sex": "female",
   "birth_date": "1990-05-01", "rating": 4.5, "primary_skills": ["math"],
   "secondary_skill": ["poetry"], "company": "Engines", "active": true,
   "country": "UK", "language": "English"}
]`

const yamlCatalog = `
- id: 1
  first_name: Ada
  last_name: Byron
  sex: female
  birth_date: 1990-05-01
  rating: 4.5
  primary_skills: [math]
  secondary_skill: [poetry]
  company: Engines
  active: true
  country: UK
  language: English
`

const tomlCatalog = `
[[providers]]
id = 1
first_name = "Ada"
last_name = "Byron"
sex = "female"
birth_date = 1990-05-01
rating = 4.5
primary_skills = ["math"]
secondary_skill = ["poetry"]
company = "Engines"
active = true
country = "UK"
language = "English"
`

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"providers.json", FormatJSON},
		{"providers.yaml", FormatYAML},
		{"PROVIDERS.YML", FormatYAML},
		{"providers.toml", FormatTOML},
		{"providers", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.path); got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	Convey("Given catalog documents", t, func() {
		Convey("When decoding JSON", func() {
			records, err := Decode(strings.NewReader(jsonCatalog), FormatJSON)

			Convey("Then numbers stay json.Number", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0]["id"], ShouldEqual, json.Number("1"))
				So(records[0]["rating"], ShouldEqual, json.Number("4.5"))
			})

			Convey("Then the record decodes into a provider", func() {
				p, err := model.Decode(0, records[0])
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, 1)
				So(p.Rating, ShouldEqual, 4.5)
			})
		})

		Convey("When decoding YAML", func() {
			records, err := Decode(strings.NewReader(yamlCatalog), FormatYAML)

			Convey("Then the unquoted date survives as a string and the record decodes", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0]["birth_date"], ShouldEqual, "1990-05-01")
				p, err := model.Decode(0, records[0])
				So(err, ShouldBeNil)
				So(p.PrimarySkills, ShouldResemble, []string{"math"})
				So(p.Active, ShouldBeTrue)
			})
		})

		Convey("When decoding TOML", func() {
			records, err := Decode(strings.NewReader(tomlCatalog), FormatTOML)

			Convey("Then the local date becomes text and the record decodes", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0]["birth_date"], ShouldEqual, "1990-05-01")
				p, err := model.Decode(0, records[0])
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, 1)
				So(p.SecondarySkill, ShouldResemble, []string{"poetry"})
			})
		})

		Convey("When the catalog is an empty array", func() {
			records, err := Decode(strings.NewReader("[]"), FormatJSON)

			Convey("Then the result is empty and non-nil", func() {
				So(err, ShouldBeNil)
				So(records, ShouldNotBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When the document is malformed", func() {
			for _, tc := range []struct {
				name   string
				doc    string
				format Format
			}{
				{"blank", "   ", FormatJSON},
				{"object not array", `{"id": 1}`, FormatJSON},
				{"trailing data", `[] []`, FormatJSON},
				{"yaml mapping", "id: 1", FormatYAML},
				{"toml without tables", "providers = 3", FormatTOML},
				{"unknown format", "[]", Format("csv")},
			} {
				tc := tc
				Convey(tc.name, func() {
					_, err := Decode(strings.NewReader(tc.doc), tc.format)
					So(errors.Is(err, ErrDataset), ShouldBeTrue)
				})
			}
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given catalog files on disk", t, func() {
		dir := t.TempDir()
		ctx := context.Background()

		Convey("When the file is YAML", func() {
			path := filepath.Join(dir, "catalog.yml")
			So(os.WriteFile(path, []byte(yamlCatalog), 0o600), ShouldBeNil)

			records, err := LoadFile(ctx, path)

			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
		})

		Convey("When the file is missing", func() {
			_, err := LoadFile(ctx, filepath.Join(dir, "missing.json"))

			So(errors.Is(err, ErrDataset), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := LoadFile(cctx, filepath.Join(dir, "any.json"))

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
