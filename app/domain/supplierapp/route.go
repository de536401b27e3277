package supplierapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth        *auth.Auth
	Session     mid.SessionReader
	SupplierBus *supplierbus.Core
	Sync        *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("suppliers")
	refresh := mid.Refresh(cfg.Sync)

	api := newApp(cfg.SupplierBus)

	app.HandlerFunc(http.MethodPost, version, "/suppliers", api.create, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPut, version, "/suppliers/{supplier_id}", api.update, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/suppliers/{supplier_id}", api.delete, authen, sess, gate, refresh)
}
