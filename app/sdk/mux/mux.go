// Package mux provides support to bind domain level routes
// to the application mux.
package mux

import (
	"context"
	"net/http"
	"time"

	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
	"github.com/jcpaschoal/jhgestor/app/sdk/mid"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/trace"
)

// Options represent optional parameters.
type Options struct {
	corsOrigin []string
}

// WithCORS provides configuration options for CORS.
func WithCORS(origins []string) func(opts *Options) {
	return func(opts *Options) {
		opts.corsOrigin = origins
	}
}

// AuthConfig contains what is needed to issue and verify tokens.
type AuthConfig struct {
	KeyLookup auth.KeyLookup
	Issuer    string
	ActiveKID string
	TTL       time.Duration
}

// BusConfig holds the business cores shared by the routes. UserBus is the
// cached core.
type BusConfig struct {
	UserBus        *userbus.Core
	ClientBus      *clientbus.Core
	SupplierBus    *supplierbus.Core
	TransactionBus *transactionbus.Core
	TaskBus        *taskbus.Core
	EventBus       *eventbus.Core
	ChatBus        *chatbus.Core
	MetaBus        *metabus.Core
	AdsBus         *adsbus.Core
}

// SessionConfig holds the process session and the orchestrator following it.
type SessionConfig struct {
	Session *sessionbus.Core
	Sync    *syncbus.Orchestrator
}

// EventParser verifies and decodes payment processor webhooks.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (billingbus.Event, error)
}

// BillingConfig contains billing service specific config.
type BillingConfig struct {
	BillingBus    *billingbus.Core
	Events        EventParser
	DefaultOrigin string
}

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build         string
	Log           *logger.Logger
	DB            *sqlx.DB
	Tracer        trace.Tracer
	Checks        map[string]func(ctx context.Context) error
	AuthConfig    AuthConfig
	BusConfig     BusConfig
	SessionConfig SessionConfig
	BillingConfig BillingConfig
	Graph         *meta.Client
}

// RouteAdder defines behavior that sets the routes to bind for an instance
// of the service.
type RouteAdder interface {
	Add(app *web.App, cfg Config)
}

// WebAPI constructs a http.Handler with all application routes bound.
func WebAPI(cfg Config, routeAdder RouteAdder, options ...func(opts *Options)) http.Handler {
	app := web.NewApp(
		cfg.Log.Info,
		cfg.Tracer,
		mid.Otel(cfg.Tracer),
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	var opts Options
	for _, option := range options {
		option(&opts)
	}

	if len(opts.corsOrigin) > 0 {
		app.EnableCORS(opts.corsOrigin)
	}

	routeAdder.Add(app, cfg)

	return app
}
