// Package checkapp maintains the app layer api for the check domain.
package checkapp

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

type app struct {
	build  string
	log    *logger.Logger
	db     *sqlx.DB
	checks map[string]func(ctx context.Context) error
}

func newApp(build string, log *logger.Logger, db *sqlx.DB, checks map[string]func(ctx context.Context) error) *app {
	return &app{
		build:  build,
		log:    log,
		db:     db,
		checks: checks,
	}
}

// readiness checks if the dependencies are ready and if not will return a
// 503 status. Do not respond by just returning an error because further up
// in the call stack it will interpret that as a non-trusted error.
func (a *app) readiness(ctx context.Context, _ *http.Request) web.Encoder {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	checks := make(map[string]func(ctx context.Context) error, len(a.checks)+1)
	for name, fn := range a.checks {
		checks[name] = fn
	}
	if a.db != nil {
		checks["database"] = func(ctx context.Context) error {
			return sqldb.StatusCheck(ctx, a.db)
		}
	}

	resp := Readiness{
		Status: "ok",
		Checks: make(map[string]string, len(checks)),
	}

	for name, fn := range checks {
		if err := fn(ctx); err != nil {
			a.log.Info(ctx, "readiness failure", "check", name, "ERROR", err)
			resp.Status = "not ready"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	return resp
}

// liveness returns simple status info if the service is alive.
func (a *app) liveness(_ context.Context, _ *http.Request) web.Encoder {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	return Info{
		Status:     "up",
		Build:      a.build,
		Host:       host,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}
}
