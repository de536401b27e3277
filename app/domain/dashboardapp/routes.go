package dashboardapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth    *auth.Auth
	Session mid.SessionReader
	Sync    *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("dashboard")

	api := newApp(cfg.Sync)

	app.HandlerFunc(http.MethodGet, version, "/dashboard", api.query, authen, sess, gate)
}
