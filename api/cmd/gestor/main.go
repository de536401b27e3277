package main

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jcpaschoal/jhgestor/api/cmd/gestor/build/all"
	"github.com/jcpaschoal/jhgestor/app/sdk/metrics"
	"github.com/jcpaschoal/jhgestor/app/sdk/mux"
	"github.com/jcpaschoal/jhgestor/business/domain/adsbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus"
	"github.com/jcpaschoal/jhgestor/business/domain/chatbus/stores/chatdb"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus/stores/clientdb"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus/stores/eventdb"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus/stores/metadb"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus/stores/sessionfile"
	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus/stores/sessionredis"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus/stores/supplierdb"
	"github.com/jcpaschoal/jhgestor/business/domain/syncbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus"
	"github.com/jcpaschoal/jhgestor/business/domain/taskbus/stores/taskdb"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus/stores/transactiondb"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus/stores/usercache"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/keystore"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/meta"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var build = "develop"

// Config is the host's configuration, read from the environment.
type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"30s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	Auth struct {
		KeysFolder string        `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys"`
		ActiveKID  string        `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer     string        `envconfig:"AUTH_ISSUER" default:"jhgestor"`
		TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"jhgestor"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
	Session struct {
		App      string        `envconfig:"SESSION_APP" default:"JHGESTOR"`
		Store    string        `envconfig:"SESSION_STORE" default:"file"`
		Dir      string        `envconfig:"SESSION_DIR" default:"zarf/session"`
		RedisURL string        `envconfig:"SESSION_REDIS_URL" default:"redis://localhost:6379/0"`
		TTL      time.Duration `envconfig:"SESSION_TTL" default:"0s"`
	}
	Sync struct {
		FetchTimeout time.Duration `envconfig:"SYNC_FETCH_TIMEOUT" default:"15s"`
	}
	Cache struct {
		UserTTL time.Duration `envconfig:"CACHE_USER_TTL" default:"5m"`
	}
	Meta struct {
		BaseURL   string        `envconfig:"META_BASE_URL" default:"https://graph.facebook.com/v18.0"`
		Timeout   time.Duration `envconfig:"META_TIMEOUT" default:"10s"`
		RateLimit float64       `envconfig:"META_RATE_LIMIT" default:"5"`
		Burst     int           `envconfig:"META_BURST" default:"10"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:""`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"GESTOR"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "GESTOR", otel.GetTraceID, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "GESTOR"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Info & Config Logging

	log.Info(ctx, "startup", "version", cfg.Version)
	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))

	// -------------------------------------------------------------------------
	// App Starting

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	// -------------------------------------------------------------------------
	// Auth Support

	log.Info(ctx, "startup", "status", "initializing authentication support")

	ks := keystore.New()

	n, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	log.Info(ctx, "startup", "status", "keys loaded", "count", n)

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Business Support

	log.Info(ctx, "startup", "status", "initializing business support")

	userStore := userdb.NewStore(log, db)

	// The orchestrator reads the profile past the cache so subscription
	// changes made by the billing service show up on the next pass.
	userBus := userbus.NewCore(usercache.NewStore(log, userStore, cfg.Cache.UserTTL))
	profileBus := userbus.NewCore(userStore)

	graph := meta.New(meta.Config{
		BaseURL:   cfg.Meta.BaseURL,
		Timeout:   cfg.Meta.Timeout,
		RateLimit: cfg.Meta.RateLimit,
		Burst:     cfg.Meta.Burst,
	})

	metaBus := metabus.NewCore(metadb.NewStore(log, db))

	busCfg := mux.BusConfig{
		UserBus:        userBus,
		ClientBus:      clientbus.NewCore(clientdb.NewStore(log, db)),
		SupplierBus:    supplierbus.NewCore(supplierdb.NewStore(log, db)),
		TransactionBus: transactionbus.NewCore(transactiondb.NewStore(log, db)),
		TaskBus:        taskbus.NewCore(taskdb.NewStore(log, db)),
		EventBus:       eventbus.NewCore(eventdb.NewStore(log, db)),
		ChatBus:        chatbus.NewCore(chatdb.NewStore(log, db)),
		MetaBus:        metaBus,
		AdsBus:         adsbus.NewCore(log, metaBus, graph),
	}

	// -------------------------------------------------------------------------
	// Session Support

	log.Info(ctx, "startup", "status", "initializing session support", "store", cfg.Session.Store)

	checks := map[string]func(ctx context.Context) error{}

	var sessionStore sessionbus.Storer

	switch cfg.Session.Store {
	case "redis":
		opt, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis url: %w", err)
		}

		rdb := redis.NewClient(opt)
		defer rdb.Close()

		checks["session"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}

		sessionStore = sessionredis.NewStore(log, rdb, cfg.Session.TTL)

	case "file":
		fileStore, err := sessionfile.NewStore(cfg.Session.Dir)
		if err != nil {
			return fmt.Errorf("opening session dir: %w", err)
		}
		sessionStore = fileStore

	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	session := sessionbus.NewCore(log, sessionStore, cfg.Session.App)

	gateway := syncbus.NewBusGateway(syncbus.Buses{
		User:        profileBus,
		Client:      busCfg.ClientBus,
		Task:        busCfg.TaskBus,
		Transaction: busCfg.TransactionBus,
		Event:       busCfg.EventBus,
		Chat:        busCfg.ChatBus,
		Ads:         busCfg.AdsBus,
		Supplier:    busCfg.SupplierBus,
	})

	orch := syncbus.New(log, session, gateway, syncbus.Config{
		FetchTimeout: cfg.Sync.FetchTimeout,
		Observer:     metrics.SyncObserver{},
	})

	session.AddListener(orch.OnSession)
	session.Load(ctx)

	defer orch.Wait()

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing V1 API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:  cfg.Version.Build,
		Log:    log,
		DB:     db,
		Tracer: tracer,
		Checks: checks,
		AuthConfig: mux.AuthConfig{
			KeyLookup: ks,
			Issuer:    cfg.Auth.Issuer,
			ActiveKID: cfg.Auth.ActiveKID,
			TTL:       cfg.Auth.TokenTTL,
		},
		BusConfig: busCfg,
		SessionConfig: mux.SessionConfig{
			Session: session,
			Sync:    orch,
		},
		Graph: graph,
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"
	cfg.Session.RedisURL = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
