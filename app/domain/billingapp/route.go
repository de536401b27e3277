package billingapp

import (
	"net/http"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// Config contains the systems the host's billing view needs.
type Config struct {
	Auth    *auth.Auth
	Session mid.SessionReader
}

// Routes adds the host's billing view.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	authen := mid.Authenticate(cfg.Auth)
	sess := mid.Session(cfg.Session)
	gate := mid.Gate(sessionbus.GroupBilling)
	admin := mid.Authorize(cfg.Auth, role.Admin)

	app.HandlerFunc(http.MethodGet, version, "/billing", subscription, authen, sess, gate, admin)
}

// ProcessorConfig contains the systems the billing service needs.
type ProcessorConfig struct {
	Log           *logger.Logger
	BillingBus    *billingbus.Core
	Events        EventParser
	DefaultOrigin string
}

// ProcessorRoutes adds the checkout, portal and webhook endpoints.
func ProcessorRoutes(app *web.App, cfg ProcessorConfig) {
	const version = "v1"

	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, version, "/billing", api.billing)
	app.HandlerFunc(http.MethodPost, version, "/billing/webhook", api.webhook)
}
