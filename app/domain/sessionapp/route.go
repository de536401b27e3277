package sessionapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Auth      *auth.Auth
	ActiveKID string
	UserBus   *userbus.Core
	Session   *sessionbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)

	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, version, "/session/login", api.login)
	app.HandlerFunc(http.MethodPost, version, "/session/register", api.register)
	app.HandlerFunc(http.MethodGet, version, "/session", api.query)
	app.HandlerFunc(http.MethodDelete, version, "/session", api.logout, authen, sess, mid.Gate(sessionbus.GroupLogout))
}
