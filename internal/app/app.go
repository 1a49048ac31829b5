package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bmu-faultfinder/internal/catalog"
	"github.com/yungbote/bmu-faultfinder/internal/data/db"
	"github.com/yungbote/bmu-faultfinder/internal/http"
	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Catalog  *catalog.Store
	Router   *gin.Engine
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	db           *db.Service
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	return NewWithConfig(LoadConfig(log), log)
}

func NewWithConfig(cfg Config, log *logger.Logger) (*App, error) {
	store, err := loadCatalog(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	tracing := cfg.Tracing
	tracing.FaultFlows = len(store.FaultFlows())
	otelShutdown := observability.InitTracing(context.Background(), log, tracing)
	metrics := observability.Init(log)

	reposet, dbSvc, err := wireRepos(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	clients := wireClients(cfg, log)
	serviceset := wireServices(log, store, reposet, clients, metrics)
	handlerset := wireHandlers(log, serviceset)
	router, err := wireRouter(cfg, log, handlerset, metrics, otelShutdown != nil)
	if err != nil {
		clients.Close()
		if dbSvc != nil {
			_ = dbSvc.Close()
		}
		if otelShutdown != nil {
			_ = otelShutdown(context.Background())
		}
		log.Sync()
		return nil, fmt.Errorf("init router: %w", err)
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		Catalog:      store,
		Router:       router,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		db:           dbSvc,
		otelShutdown: otelShutdown,
	}, nil
}

// loadCatalog decodes and validates the embedded dataset. Strict mode turns
// validation problems into a startup error; otherwise they are only logged.
func loadCatalog(cfg Config, log *logger.Logger) (*catalog.Store, error) {
	store, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := store.Validate(); err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				log.Error("catalog problem", "entity", p.Entity, "id", p.ID, "problem", p.Message)
			}
		}
		if cfg.CatalogStrict {
			return nil, fmt.Errorf("catalog invalid: %w", err)
		}
		log.Warn("catalog invalid, continuing (CATALOG_STRICT=false)")
	}
	log.Info("catalog loaded",
		"models", len(store.Models()),
		"subsystems", len(store.Subsystems()),
		"symptoms", len(store.Symptoms()),
		"components", len(store.Components()),
		"fault_flows", len(store.FaultFlows()),
	)
	return store, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := http.NewServer(a.Router, http.ServerConfig{
		Addr:            a.Cfg.Addr(),
		ReadTimeout:     a.Cfg.ReadTimeout,
		WriteTimeout:    a.Cfg.WriteTimeout,
		IdleTimeout:     a.Cfg.IdleTimeout,
		ShutdownTimeout: a.Cfg.ShutdownTimeout,
	}, a.Log)
	return srv.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Log.Warn("closing database failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
