package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Bus      bus.Bus
	SSEHub   *realtime.SSEHub
	Router   *gin.Engine

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New opens every configured connection and wires the HTTP stack. Close
// releases whatever New managed to open.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	a := &App{Log: log, Cfg: cfg}

	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	a.Metrics = observability.Init(log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients
	if clients.DB != nil {
		a.Metrics.RegisterDBStats(log, clients.DB.DB(), "primary")
	}

	activity, err := wireBus(log, cfg, clients)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init activity bus: %w", err)
	}
	a.Bus = activity

	a.Repos = wireRepos(log, clients)
	a.Services, err = wireServices(ctx, log, cfg, a.Repos, activity, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.SSEHub = realtime.NewSSEHub(log)
	handlers := wireHandlers(log, a.Services, clients, a.SSEHub)
	middleware := wireMiddleware(log, a.Services)
	a.Router = wireRouter(log, cfg, a.Metrics, handlers, middleware)
	return a, nil
}

// Start runs background work: the bus forwarder feeding the SSE hub, redis
// metrics and consul registration.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start activity forwarder: %w", err)
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
	if a.Clients.Consul != nil {
		if err := a.Clients.Consul.Register(a.Cfg.Consul); err != nil {
			a.Log.Warn("consul registration failed", "error", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &http.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr, "store", a.Cfg.StoreBackend, "bus", a.Cfg.ActivityBus)
	return srv.Run(ctx, a.Cfg.Addr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	timeout := a.Cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	a.Clients.Close(ctx)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
