package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeS3 serves objects from memory keyed by "bucket/key".
type fakeS3 struct {
	objects map[string]string
	calls   int
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestOpen(t *testing.T) {
	Convey("Given catalog locations", t, func() {
		ctx := context.Background()
		store := &fakeS3{objects: map[string]string{
			"catalogs/prod/providers.yaml": yamlCatalog,
			"catalogs/prod/providers.json": jsonCatalog,
			"catalogs/broken.json":         `{"id": 1}`,
		}}

		Convey("When the location is an S3 YAML object", func() {
			records, err := Open(ctx, "s3://catalogs/prod/providers.yaml", WithS3Client(store))

			Convey("Then it is fetched and decoded as YAML", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)
				So(records[0]["birth_date"], ShouldEqual, "1990-05-01")
				So(store.calls, ShouldEqual, 1)
			})
		})

		Convey("When the location is an S3 JSON object", func() {
			records, err := Open(ctx, "s3://catalogs/prod/providers.json", WithS3Client(store))

			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
		})

		Convey("When the S3 location is unusable", func() {
			for _, loc := range []string{
				"s3://catalogs/missing.json",
				"s3://catalogs/broken.json",
				"s3://catalogs",
			} {
				loc := loc
				Convey(loc, func() {
					_, err := Open(ctx, loc, WithS3Client(store))
					So(errors.Is(err, ErrDataset), ShouldBeTrue)
				})
			}
		})

		Convey("When the location is a local TOML file", func() {
			path := filepath.Join(t.TempDir(), "providers.toml")
			So(os.WriteFile(path, []byte(tomlCatalog), 0o600), ShouldBeNil)

			records, err := Open(ctx, path)

			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := Open(cctx, "s3://catalogs/prod/providers.json", WithS3Client(store))

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(store.calls, ShouldEqual, 0)
		})
	})
}

func TestIsSQLiteFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"catalog.db", true},
		{"catalog.SQLITE", true},
		{"/var/lib/providers.sqlite3", true},
		{"providers.json", false},
		{"providers", false},
	}
	for _, tt := range tests {
		if got := isSQLiteFile(tt.path); got != tt.want {
			t.Errorf("isSQLiteFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
