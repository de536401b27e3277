package eventapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log      *logger.Logger
	DB       *sqlx.DB
	Auth     *auth.Auth
	Session  mid.SessionReader
	UserBus  *userbus.Core
	EventBus *eventbus.Core
	Sync     *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("calendar")
	refresh := mid.Refresh(cfg.Sync)
	transaction := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.UserBus, cfg.EventBus)

	app.HandlerFunc(http.MethodPost, version, "/events", api.create, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPut, version, "/events/{event_id}", api.update, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/events/{event_id}", api.delete, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPost, version, "/events/google", api.importGoogle, authen, sess, gate, refresh, transaction)
	app.HandlerFunc(http.MethodDelete, version, "/events/google", api.disconnectGoogle, authen, sess, gate, refresh, transaction)
}
