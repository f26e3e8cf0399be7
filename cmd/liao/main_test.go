package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/liao/internal/adapters/repository"
	"github.com/okian/liao/internal/adapters/session"
	app "github.com/okian/liao/internal/app"
	"github.com/okian/liao/internal/config"
	"github.com/okian/liao/pkg/logger"
)

// run executes the CLI with args and returns its stdout.
func run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &errOut
	err := a.RunContext(context.Background(), append([]string{"liao"}, args...))
	return out.String(), err
}

func TestAdminCommands(t *testing.T) {
	Convey("Given a fresh sqlite database", t, func() {
		dir := t.TempDir()
		t.Setenv("LIAO_DB_DSN", filepath.Join(dir, "liao.db"))
		t.Setenv("LIAO_LOG_LEVEL", "error")

		Convey("team add creates teams in id order", func() {
			out, err := run("team", "add", "Red")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "1\tRed\n")

			_, err = run("team", "add", "Blue", "Team")
			So(err, ShouldBeNil)

			out, err = run("team", "list")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "1\tRed\n2\tBlue Team\n")
		})

		Convey("team add without a name fails", func() {
			_, err := run("team", "add")
			So(errors.Is(err, errUsage), ShouldBeTrue)
		})

		Convey("team seed reads a YAML roster", func() {
			path := filepath.Join(dir, "teams.yaml")
			So(os.WriteFile(path, []byte("teams:\n  - Red\n  - Blue\n  - Green\n"), 0o600), ShouldBeNil)

			out, err := run("team", "seed", path)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "1\tRed\n2\tBlue\n3\tGreen\n")
		})

		Convey("passcode add validates the code shape", func() {
			_, err := run("passcode", "add", "short")
			So(errors.Is(err, errUsage), ShouldBeTrue)

			out, err := run("passcode", "add", "abc1234")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "passcode added\n")
		})

		Convey("migrate up is idempotent", func() {
			out, err := run("migrate", "up")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "migrated to")

			out, err = run("migrate", "up")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "no new migrations to run\n")

			out, err = run("migrate", "status")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "unapplied: ")
		})

		Convey("export writes a workbook", func() {
			_, err := run("team", "add", "Red")
			So(err, ShouldBeNil)

			path := filepath.Join(dir, "out.xlsx")
			out, err := run("export", "--out", path)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "wrote "+path+"\n")

			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer f.Close()
			So(f.GetSheetList(), ShouldContain, "Leaderboard")
		})
	})

	Convey("Given a seeded roster", t, func() {
		dir := t.TempDir()
		t.Setenv("LIAO_DB_DSN", filepath.Join(dir, "liao.db"))
		t.Setenv("LIAO_LOG_LEVEL", "error")
		for _, name := range []string{"Red", "Blue", "Green"} {
			_, err := run("team", "add", name)
			So(err, ShouldBeNil)
		}

		Convey("simulate writes the requested submissions", func() {
			out, err := run("simulate", "--submissions", "12", "--workers", "2", "--seed", "5")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "submissions: 12 stored, 0 failed of 12\n")
			So(out, ShouldContainSubstring, "Red")
		})
	})

	Convey("Given an invalid configuration", t, func() {
		t.Setenv("LIAO_DB_DRIVER", "mysql")

		Convey("every command fails before touching the store", func() {
			_, err := run("team", "list")
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the server handler over a migrated store", t, func() {
		ctx := context.Background()
		So(logger.Init(logger.WithOutput(io.Discard)), ShouldBeNil)
		store, err := repository.Open(ctx, repository.DriverSQLite, ":memory:")
		So(err, ShouldBeNil)
		_, err = store.Migrate(ctx)
		So(err, ShouldBeNil)

		gate, err := session.NewGate(store, "test-secret")
		So(err, ShouldBeNil)
		svc := app.New(app.WithStore(store), app.WithGate(gate))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, config.New(ctx), svc)

		Convey("Docs are public", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The API requires a session", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
