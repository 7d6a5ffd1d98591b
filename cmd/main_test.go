package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/okian/providex/internal/app"
	"github.com/okian/providex/internal/config"
	"github.com/okian/providex/internal/domain/types"
	"github.com/okian/providex/internal/probe"
	"github.com/okian/providex/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	convey.Convey("Given the full route table over a generated catalog", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithSource(probe.GenerateCatalog(50, 1, time.Now())))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		h := newHandler(ctx, svc, logger.Get())

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		for _, path := range []string{"/", "/providers", "/stats", "/healthz", "/openapi.yaml", "/api-docs"} {
			path := path
			convey.Convey("Then "+path+" answers 200", func() {
				convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
			})
		}

		convey.Convey("Then /providers returns the whole catalog best first", func() {
			var body types.ProviderList
			convey.So(json.Unmarshal(get("/providers").Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body.Providers, convey.ShouldHaveLength, 50)
			for i := 1; i < len(body.Providers); i++ {
				convey.So(body.Providers[i].Rating, convey.ShouldBeLessThanOrEqualTo, body.Providers[i-1].Rating)
			}
		})

		convey.Convey("Then a bad trait query is a 400", func() {
			convey.So(get("/providers?traits=nocolon").Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then unknown paths are 404", func() {
			convey.So(get("/nope").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a config pointing at a generated catalog", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "providers.json")
		convey.So(probe.WriteCatalog(context.Background(), path, probe.GenerateCatalog(10, 1, time.Now())), convey.ShouldBeNil)

		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.DatasetPath = path
		cfg.ShutdownTimeoutMS = 1000

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return")
				}
			})
		})

		convey.Convey("When the dataset is missing", func() {
			cfg.DatasetPath = filepath.Join(dir, "missing.json")
			err := run(context.Background(), cfg)

			convey.Convey("Then run fails before serving", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the dataset is invalid", func() {
			convey.So(os.WriteFile(path, []byte(`[{"id": "x"}]`), 0o600), convey.ShouldBeNil)
			err := run(context.Background(), cfg)

			convey.Convey("Then run fails with the schema error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "id")
			})
		})
	})
}
