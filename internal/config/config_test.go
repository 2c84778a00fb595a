package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vigil/internal/config"
)

func TestConfig(t *testing.T) {
	Convey("Given the configuration loader", t, func() {
		ctx := context.Background()

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(ctx)

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.QueueSize, ShouldEqual, 10_000)
				So(cfg.FallenTimeoutSeconds, ShouldEqual, 5.0)
				So(cfg.SuddenFallWindowSeconds, ShouldEqual, 2.0)
				So(cfg.CooldownSeconds, ShouldEqual, 30.0)
				So(cfg.HistorySeconds, ShouldEqual, 3.0)
				So(cfg.FPS, ShouldEqual, 30)
			})
		})

		Convey("When environment variables are set", func() {
			t.Setenv("VIGIL_ADDR", ":7070")
			t.Setenv("VIGIL_FALLEN_TIMEOUT_SECONDS", "7.5")
			t.Setenv("VIGIL_FPS", "15")

			cfg, err := config.Load(ctx)

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.FallenTimeoutSeconds, ShouldEqual, 7.5)
				So(cfg.FPS, ShouldEqual, 15)
				// Untouched keys keep their defaults.
				So(cfg.QueueSize, ShouldEqual, 10_000)
			})
		})

		Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "vigil.yaml")
			yaml := "addr: \":6060\"\nhistory_seconds: 2.0\nmax_alerts: 50\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			t.Setenv("VIGIL_CONFIG", path)

			cfg, err := config.Load(ctx)

			Convey("Then file values layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.HistorySeconds, ShouldEqual, 2.0)
				So(cfg.MaxAlerts, ShouldEqual, 50)
			})

			Convey("And env still wins over the file", func() {
				t.Setenv("VIGIL_ADDR", ":5050")
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
				So(cfg.HistorySeconds, ShouldEqual, 2.0)
			})
		})

		Convey("When validation fails", func() {
			Convey("An empty addr is rejected", func() {
				dir := t.TempDir()
				path := filepath.Join(dir, "vigil.yaml")
				So(os.WriteFile(path, []byte("addr: \"\"\n"), 0o600), ShouldBeNil)
				t.Setenv("VIGIL_CONFIG", path)

				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
			})

			Convey("A zero fps is rejected", func() {
				t.Setenv("VIGIL_FPS", "0")
				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
			})

			Convey("A negative timeout is rejected", func() {
				t.Setenv("VIGIL_FALLEN_TIMEOUT_SECONDS", "-1")
				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
			})

			Convey("A missing config file is an error", func() {
				t.Setenv("VIGIL_CONFIG", "/nonexistent/vigil.yaml")
				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
			})
		})
	})
}
