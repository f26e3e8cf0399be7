package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/liao/internal/config"
)

var configEnvVars = []string{
	"LIAO_CONFIG",
	"LIAO_ADDR",
	"LIAO_DB_DRIVER",
	"LIAO_DB_DSN",
	"LIAO_SESSION_SECRET",
	"LIAO_SESSION_TTL_SECONDS",
	"LIAO_LOGIN_BURST",
	"LIAO_DEDUPE_SIZE",
	"LIAO_ALLOWED_ORIGINS",
	"LIAO_SECURE_COOKIE",
	"LIAO_TRUST_PROXY",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "liao-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	_ = f.Close()
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBDSN, convey.ShouldEqual, "liao.db")
				convey.So(cfg.AllowedOrigins, convey.ShouldBeEmpty)
				convey.So(cfg.TrustProxy, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LIAO_ADDR", ":8080")
			_ = os.Setenv("LIAO_DB_DRIVER", "postgres")
			_ = os.Setenv("LIAO_DB_DSN", "postgres://liao@localhost/liao")
			_ = os.Setenv("LIAO_SESSION_SECRET", "s3cret")
			_ = os.Setenv("LIAO_DEDUPE_SIZE", "128")
			_ = os.Setenv("LIAO_SECURE_COOKIE", "true")
			_ = os.Setenv("LIAO_TRUST_PROXY", "true")
			_ = os.Setenv("LIAO_ALLOWED_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
				convey.So(cfg.DBDSN, convey.ShouldEqual, "postgres://liao@localhost/liao")
				convey.So(cfg.SessionSecret, convey.ShouldEqual, "s3cret")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 128)
				convey.So(cfg.SecureCookie, convey.ShouldBeTrue)
				convey.So(cfg.TrustProxy, convey.ShouldBeTrue)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
db_dsn: "file.db"
session_ttl_seconds: 3600
allowed_origins:
  - https://yaml.example
`)
			_ = os.Setenv("LIAO_CONFIG", path)
			_ = os.Setenv("LIAO_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DBDSN, convey.ShouldEqual, "file.db")
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 3600)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://yaml.example"})
				convey.So(cfg.LoginBurst, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("LIAO_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("LIAO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid values", func() {
			cases := map[string]string{
				"LIAO_ADDR":                "",
				"LIAO_DB_DRIVER":           "mysql",
				"LIAO_DB_DSN":              "",
				"LIAO_SESSION_TTL_SECONDS": "0",
				"LIAO_LOGIN_BURST":         "-1",
			}
			for key, val := range cases {
				clearConfigEnvVars()
				_ = os.Setenv(key, val)

				cfg, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			}
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LIAO_DEDUPE_SIZE", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
