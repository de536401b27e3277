package adsapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth    *auth.Auth
	Session mid.SessionReader
	AdsBus  *adsbus.Core
	MetaBus *metabus.Core
	Graph   *meta.Client
	Sync    *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("ads")
	admin := mid.Authorize(cfg.Auth, role.Admin)
	refresh := mid.Refresh(cfg.Sync)

	api := newApp(cfg)

	app.HandlerFunc(http.MethodGet, version, "/ads/config", api.queryConfig, authen, sess, gate)
	app.HandlerFunc(http.MethodPut, version, "/ads/config", api.saveConfig, authen, sess, gate, admin, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/ads/config", api.clearConfig, authen, sess, gate, admin, refresh)
	app.HandlerFunc(http.MethodGet, version, "/ads/accounts", api.accounts, authen, sess, gate, admin)
	app.HandlerFunc(http.MethodGet, version, "/ads/campaigns", api.campaigns, authen, sess, gate)
	app.HandlerFunc(http.MethodGet, version, "/ads/insights", api.insights, authen, sess, gate)
}
