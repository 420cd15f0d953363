package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	service "github.com/okian/whackaword/internal/app"
	"github.com/okian/whackaword/internal/config"
	"github.com/okian/whackaword/internal/domain/catalog"
	"github.com/okian/whackaword/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildCatalog(t *testing.T) {
	Convey("Given the default config", t, func() {
		c := config.New()

		Convey("The built-in foods fill the configured holes", func() {
			cat, err := buildCatalog(c)
			So(err, ShouldBeNil)
			So(cat.TargetCount(), ShouldEqual, catalog.Default().TargetCount())
			So(slotIDs(cat), ShouldResemble, c.Slots)
		})

		Convey("Configured targets replace the built-in ones", func() {
			c.Targets = []config.TargetConfig{
				{Name: "Cat", Prompt: "cat_prompt"},
				{Name: "Dog"},
				{Name: "Fish"},
			}
			cat, err := buildCatalog(c)
			So(err, ShouldBeNil)
			So(cat.TargetCount(), ShouldEqual, 3)
			So(cat.Targets()[0].Prompt.ID, ShouldEqual, "cat_prompt")
			So(cat.Targets()[1].Prompt.ID, ShouldEqual, "dog")
		})

		Convey("Duplicate holes are rejected", func() {
			c.Slots = []string{"a", "a"}
			_, err := buildCatalog(c)
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})
	})
}

func TestSessionOptions(t *testing.T) {
	Convey("Session options follow the config", t, func() {
		c := config.New()
		So(sessionOptions(c), ShouldHaveLength, 4)

		c.Seed = 7
		So(sessionOptions(c), ShouldHaveLength, 5)
		So(simOptions(c, logger.Nop()), ShouldHaveLength, 3)
	})
}

func TestServeMux(t *testing.T) {
	Convey("Given the serve mux over a stopped service", t, func() {
		svc := service.New()
		srv := httptest.NewServer(newMux(context.Background(), svc))
		defer srv.Close()

		get := func(path string) int {
			resp, err := http.Get(srv.URL + path) //nolint:noctx // test
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			return resp.StatusCode
		}

		Convey("Health, docs and the play page are served", func() {
			So(get("/healthz"), ShouldEqual, http.StatusOK)
			So(get("/openapi.yaml"), ShouldEqual, http.StatusOK)
			So(get("/api-docs"), ShouldEqual, http.StatusOK)
			So(get("/"), ShouldEqual, http.StatusOK)
			So(get("/metrics"), ShouldEqual, http.StatusOK)
		})

		Convey("The session is unavailable until started", func() {
			So(get("/session"), ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
