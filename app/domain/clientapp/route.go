package clientapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth      *auth.Auth
	Session   mid.SessionReader
	ClientBus *clientbus.Core
	Sync      *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("clients")
	admin := mid.Authorize(cfg.Auth, role.Admin)
	refresh := mid.Refresh(cfg.Sync)

	api := newApp(cfg.ClientBus)

	app.HandlerFunc(http.MethodPost, version, "/clients", api.create, authen, sess, gate, admin, refresh)
	app.HandlerFunc(http.MethodPut, version, "/clients/{client_id}", api.update, authen, sess, gate, admin, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/clients/{client_id}", api.delete, authen, sess, gate, admin, refresh)
}
