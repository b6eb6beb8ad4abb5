package eventservice

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/api"
	"github.com/machi-events/eventfinder/internal/auth"
	"github.com/machi-events/eventfinder/internal/catalog"
	"github.com/machi-events/eventfinder/internal/config"
	"github.com/machi-events/eventfinder/internal/eventcache"
	"github.com/machi-events/eventfinder/internal/events"
	"github.com/machi-events/eventfinder/internal/eventsource"
	"github.com/machi-events/eventfinder/internal/health"
	"github.com/machi-events/eventfinder/internal/logger"
	"github.com/machi-events/eventfinder/internal/outbox"
	"github.com/machi-events/eventfinder/internal/services"
	"github.com/machi-events/eventfinder/internal/store"
	"github.com/machi-events/eventfinder/internal/store/memory"
	"github.com/machi-events/eventfinder/internal/store/postgres"
	"github.com/machi-events/eventfinder/internal/store/sqlite"
)

const (
	serviceName = "event-service"
	// sessionSweepInterval controls how often expired sessions are dropped.
	sessionSweepInterval = 10 * time.Minute
)

// App owns every long-lived component of the service. Each App is
// independent, so tests can build as many as they like.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	store    store.Store
	sessions *auth.SessionManager
	bus      *events.Bus
	sink     outbox.Sink
	worker   *outbox.Worker
	source   *eventsource.Client

	storeHealth *health.PingChecker
	checkers    []*health.PingChecker
	svcHealth   *health.ServiceHealthChecker

	handler http.Handler
	wg      sync.WaitGroup
}

// New builds the component graph: store (seeded), cache, event source,
// services, auth gate, activity pipeline, health checkers and router.
// Background work does not begin until Start.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	st, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, err
	}
	if err := catalog.Seed(ctx, st, log); err != nil {
		_ = closeStore(st)
		return nil, err
	}

	sink, err := newSink(ctx, cfg, log)
	if err != nil {
		_ = closeStore(st)
		return nil, err
	}

	a := &App{cfg: cfg, log: log, store: st, sink: sink}
	a.sessions = auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)
	a.bus = events.NewBus(cfg.BusBuffer)
	a.worker = outbox.NewWorker(a.bus, sink, outbox.Config{}, log.With().Str("component", "outbox").Logger())
	a.source = eventsource.New(eventsource.Config{
		BaseURL: cfg.EventSourceURL,
		APIKey:  cfg.EventSourceAPIKey,
		Model:   cfg.EventSourceModel,
		Timeout: cfg.EventSourceTimeout,
	}, log)

	a.buildHealth()
	a.handler = a.buildRouter()
	return a, nil
}

func (a *App) buildRouter() http.Handler {
	cache := eventcache.New(a.cfg.EventCacheSize, a.cfg.EventCacheTTL)
	eventSvc := services.NewEventService(a.source, cache, a.store.Districts(), a.log)

	return api.NewRouter(api.Deps{
		Users:     services.NewUserService(a.store.Users(), auth.NewBcryptHasher(a.cfg.BcryptCost), a.bus, a.log),
		Favorites: services.NewFavoriteService(a.store.Favorites(), eventSvc, a.bus, a.log),
		Districts: services.NewDistrictService(a.store.Districts()),
		Events:    eventSvc,
		Gate:      auth.NewGate(a.sessions, a.store.Users(), a.cfg.CookieSecure, a.log),
		Health:    api.NewHealthHandler(a.svcHealth.IsHealthy, a.svcHealth.Components),
		Log:       a.log,
	})
}

func (a *App) buildHealth() {
	probe := a.cfg.HealthProbeTimeout
	a.storeHealth = store.NewStoreHealthChecker(a.store, a.log, probe)
	a.checkers = []*health.PingChecker{
		a.storeHealth,
		eventsource.NewHealthChecker(a.source, a.log, probe),
	}
	if ns, ok := a.sink.(*outbox.NATSSink); ok {
		a.checkers = append(a.checkers, health.NewPingChecker("nats", ns, a.log, probe))
	}

	deps := make([]health.HealthChecker, 0, len(a.checkers))
	for _, c := range a.checkers {
		deps = append(deps, c)
	}
	a.svcHealth = health.NewServiceHealthChecker(a.log, deps...)
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler { return a.handler }

// Start launches health checkers, the session sweeper and the outbox worker.
// They stop when ctx is cancelled; Close waits for them.
func (a *App) Start(ctx context.Context) {
	interval := a.cfg.HealthInterval
	for _, c := range a.checkers {
		c := c
		a.goRun(func() { c.Start(ctx, interval) })
	}
	a.goRun(func() { a.svcHealth.Start(ctx, interval) })
	a.goRun(func() { a.sessions.Start(ctx, sessionSweepInterval) })
	a.goRun(func() { _ = a.worker.Run(ctx) })
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// WaitUntilHealthy blocks until the store reports healthy or the startup
// window expires. The event source and NATS are reported by /api/health but
// do not gate startup.
func (a *App) WaitUntilHealthy(ctx context.Context) error {
	timeout := a.cfg.StartupTimeout
	if floor := 2 * a.cfg.HealthInterval; timeout < floor {
		timeout = floor
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if a.storeHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: store not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close waits for background work started by Start (its context must already
// be cancelled) and releases the sink and store.
func (a *App) Close() error {
	a.wg.Wait()
	if err := a.sink.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing activity sink")
	}
	return closeStore(a.store)
}

// Run starts the event service HTTP server and blocks until shutdown or error.
func Run() error {
	boot := logger.New(serviceName, "info")

	cfg, err := config.New()
	if err != nil {
		boot.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("event_source_url", cfg.EventSourceURL).
		Bool("nats_enabled", cfg.NATSURL != "").
		Msg("Event service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		stop()
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()
	app.Start(ctx)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := app.WaitUntilHealthy(ctx); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, app.Handler())
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore opens the configured driver.
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), nil
	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return st, nil
	case "postgres":
		st, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info().Msg("postgres store ready")
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func closeStore(st store.Store) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// newSink returns a NATS JetStream sink when NATS_URL is set, else a log sink.
func newSink(ctx context.Context, cfg *config.Config, log zerolog.Logger) (outbox.Sink, error) {
	if cfg.NATSURL == "" {
		return outbox.LogSink{Log: log}, nil
	}
	sink, err := outbox.NewNATSSink(ctx, cfg.NATSURL, log)
	if err != nil {
		log.Error().Stack().Err(err).Str("url", cfg.NATSURL).Msg("NATS unavailable")
		return nil, err
	}
	return sink, nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// event searches wait on the external source
		WriteTimeout: cfg.EventSourceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		// shutdown drains in-flight requests, so they must outlive the signal
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
