package userapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Auth    *auth.Auth
	Session *sessionbus.Core
	UserBus *userbus.Core
	Sync    *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	admin := mid.Authorize(cfg.Auth, role.Admin)
	refresh := mid.Refresh(cfg.Sync)

	api := newApp(cfg.UserBus, cfg.Session)

	app.HandlerFunc(http.MethodGet, version, "/users", api.query, authen, sess, mid.Gate("users"), admin)
	app.HandlerFunc(http.MethodPost, version, "/users", api.create, authen, sess, mid.Gate("users"), admin, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/users/{user_id}", api.delete, authen, sess, mid.Gate("users"), admin, refresh)

	app.HandlerFunc(http.MethodGet, version, "/me", api.queryMe, authen, sess, mid.Gate("profile"))
	app.HandlerFunc(http.MethodPut, version, "/me", api.updateMe, authen, sess, mid.Gate("profile"), refresh)
}
