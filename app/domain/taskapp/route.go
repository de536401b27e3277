package taskapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
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
	TaskBus *taskbus.Core
	Sync    *syncbus.Orchestrator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate("tasks")
	refresh := mid.Refresh(cfg.Sync)
	transaction := mid.BeginCommitRollback(cfg.Log, sqldb.NewBeginner(cfg.DB))

	api := newApp(cfg.TaskBus)

	app.HandlerFunc(http.MethodPost, version, "/tasks", api.create, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodPut, version, "/tasks/{task_id}", api.update, authen, sess, gate, refresh)
	app.HandlerFunc(http.MethodDelete, version, "/tasks/{task_id}", api.delete, authen, sess, gate, refresh, transaction)
	app.HandlerFunc(http.MethodPost, version, "/tasks/{task_id}/comments", api.comment, authen, sess, gate, refresh)
}
