// Package billing binds the routes of the billing service.
package billing

import (
	"github.com/jcpaschoal/jhgestor/app/domain/billingapp"
	"github.com/jcpaschoal/jhgestor/app/domain/checkapp"
	"github.com/jcpaschoal/jhgestor/app/sdk/mux"
	"github.com/jcpaschoal/jhgestor/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

// Add implements the RouterAdder interface.
func (add) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build:  cfg.Build,
		Log:    cfg.Log,
		DB:     cfg.DB,
		Checks: cfg.Checks,
	})

	billingapp.ProcessorRoutes(app, billingapp.ProcessorConfig{
		Log:           cfg.Log,
		BillingBus:    cfg.BillingConfig.BillingBus,
		Events:        cfg.BillingConfig.Events,
		DefaultOrigin: cfg.BillingConfig.DefaultOrigin,
	})
}
