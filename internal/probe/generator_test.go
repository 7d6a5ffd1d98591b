package probe

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/providex/internal/adapters/dataset"
	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var today = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestGenerateCatalog(t *testing.T) {
	Convey("Given a generated catalog", t, func() {
		records := GenerateCatalog(200, 7, today)

		Convey("Then every record decodes with a unique sequential id", func() {
			So(records, ShouldHaveLength, 200)
			for i, raw := range records {
				p, err := model.Decode(i, raw)
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, i+1)
				So(p.Age(today), ShouldBeBetweenOrEqual, minAgeYears, minAgeYears+ageSpreadYears)
				So(p.PrimarySkills, ShouldNotBeEmpty)
			}
		})

		Convey("Then the same seed yields the same catalog", func() {
			So(GenerateCatalog(200, 7, today), ShouldResemble, records)
		})

		Convey("Then a different seed yields a different catalog", func() {
			So(GenerateCatalog(200, 8, today), ShouldNotResemble, records)
		})
	})
}

func TestWriteCatalog(t *testing.T) {
	for _, name := range []string{"catalog.json", "nested/catalog.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), name)
			records := GenerateCatalog(25, 3, today)

			if err := WriteCatalog(ctx, path, records); err != nil {
				t.Fatalf("write: %v", err)
			}
			loaded, err := dataset.LoadFile(ctx, path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(loaded) != len(records) {
				t.Fatalf("loaded %d records, want %d", len(loaded), len(records))
			}
			for i, raw := range loaded {
				want, _ := model.Decode(i, records[i])
				got, err := model.Decode(i, raw)
				if err != nil {
					t.Fatalf("decode %d: %v", i, err)
				}
				if got.ID != want.ID || got.Rating != want.Rating || got.BirthDate != want.BirthDate {
					t.Fatalf("record %d round-tripped as %+v, want %+v", i, got, want)
				}
			}
		})
	}
}
