// Package dashboardapp maintains the app layer api for the tenant overview.
package dashboardapp

import (
	"context"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/domain/syncapp"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

type app struct {
	sync *syncbus.Orchestrator
}

func newApp(sync *syncbus.Orchestrator) *app {
	return &app{
		sync: sync,
	}
}

// query returns the overview of the session user's tenant.
func (a *app) query(ctx context.Context, _ *http.Request) web.Encoder {
	snap, resp := syncapp.Current(ctx, a.sync)
	if resp != nil {
		return resp
	}

	return toAppDashboard(snap, time.Now())
}
