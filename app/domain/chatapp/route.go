package chatapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *logger.Logger
	DB      *sqlx.DB
	Auth    *auth.Auth
	Session mid.SessionReader
	UserBus *userbus.Core
	ChatBus *chatbus.Core
	Sync    *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("chat")
	refresh := mid.Refresh(cfg.Sync)
	transaction := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.UserBus, cfg.ChatBus)

	app.HandlerFunc(http.MethodPost, version, "/messages", api.send, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPost, version, "/messages/read", api.markRead, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPost, version, "/groups", api.createGroup, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPut, version, "/groups/{group_id}", api.updateGroup, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/groups/{group_id}", api.deleteGroup, authen, sess, gate, refresh, transaction)
}
