// Package all binds every route of the application host.
package all

import (
	"github.com/jcpaschoal/jhgestor/app/domain/adsapp"
	"github.com/jcpaschoal/jhgestor/app/domain/billingapp"
	"github.com/jcpaschoal/jhgestor/app/domain/chatapp"
	"github.com/jcpaschoal/jhgestor/app/domain/checkapp"
	"github.com/jcpaschoal/jhgestor/app/domain/clientapp"
	"github.com/jcpaschoal/jhgestor/app/domain/dashboardapp"
	"github.com/jcpaschoal/jhgestor/app/domain/eventapp"
	"github.com/jcpaschoal/jhgestor/app/domain/sessionapp"
	"github.com/jcpaschoal/jhgestor/app/domain/supplierapp"
	"github.com/jcpaschoal/jhgestor/app/domain/syncapp"
	"github.com/jcpaschoal/jhgestor/app/domain/taskapp"
	"github.com/jcpaschoal/jhgestor/app/domain/transactionapp"
	"github.com/jcpaschoal/jhgestor/app/domain/userapp"
	"github.com/jcpaschoal/jhgestor/app/sdk/auth"
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
	bus := cfg.BusConfig
	session := cfg.SessionConfig.Session
	sync := cfg.SessionConfig.Sync

	authClient := auth.New(auth.Config{
		Log:       cfg.Log,
		Users:     bus.UserBus,
		KeyLookup: cfg.AuthConfig.KeyLookup,
		Issuer:    cfg.AuthConfig.Issuer,
		TTL:       cfg.AuthConfig.TTL,
	})

	checkapp.Routes(app, checkapp.Config{
		Build:  cfg.Build,
		Log:    cfg.Log,
		DB:     cfg.DB,
		Checks: cfg.Checks,
	})

	sessionapp.Routes(app, sessionapp.Config{
		Log:       cfg.Log,
		Auth:      authClient,
		ActiveKID: cfg.AuthConfig.ActiveKID,
		UserBus:   bus.UserBus,
		Session:   session,
	})

	syncapp.Routes(app, syncapp.Config{
		Auth:    authClient,
		Session: session,
		Sync:    sync,
	})

	dashboardapp.Routes(app, dashboardapp.Config{
		Auth:    authClient,
		Session: session,
		Sync:    sync,
	})

	userapp.Routes(app, userapp.Config{
		Auth:    authClient,
		Session: session,
		UserBus: bus.UserBus,
		Sync:    sync,
	})

	clientapp.Routes(app, clientapp.Config{
		Auth:      authClient,
		Session:   session,
		ClientBus: bus.ClientBus,
		Sync:      sync,
	})

	supplierapp.Routes(app, supplierapp.Config{
		Auth:        authClient,
		Session:     session,
		SupplierBus: bus.SupplierBus,
		Sync:        sync,
	})

	transactionapp.Routes(app, transactionapp.Config{
		Auth:           authClient,
		Session:        session,
		TransactionBus: bus.TransactionBus,
		Sync:           sync,
	})

	taskapp.Routes(app, taskapp.Config{
		Log:     cfg.Log,
		DB:      cfg.DB,
		Auth:    authClient,
		Session: session,
		TaskBus: bus.TaskBus,
		Sync:    sync,
	})

	eventapp.Routes(app, eventapp.Config{
		Log:      cfg.Log,
		DB:       cfg.DB,
		Auth:     authClient,
		Session:  session,
		UserBus:  bus.UserBus,
		EventBus: bus.EventBus,
		Sync:     sync,
	})

	chatapp.Routes(app, chatapp.Config{
		Log:     cfg.Log,
		DB:      cfg.DB,
		Auth:    authClient,
		Session: session,
		UserBus: bus.UserBus,
		ChatBus: bus.ChatBus,
		Sync:    sync,
	})

	adsapp.Routes(app, adsapp.Config{
		Auth:    authClient,
		Session: session,
		AdsBus:  bus.AdsBus,
		MetaBus: bus.MetaBus,
		Graph:   cfg.Graph,
		Sync:    sync,
	})

	billingapp.Routes(app, billingapp.Config{
		Auth:    authClient,
		Session: session,
	})
}
