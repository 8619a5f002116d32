package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"enroll/internal/audit"
	httpapi "enroll/internal/http"
	"enroll/internal/platform/config"
	"enroll/internal/platform/httpserver"
	"enroll/internal/platform/logger"
	platformmetrics "enroll/internal/platform/metrics"
	"enroll/internal/platform/redis"
	"enroll/internal/platform/tracing"
	"enroll/internal/registration/backend"
	"enroll/internal/registration/countdown"
	"enroll/internal/registration/handler"
	regmetrics "enroll/internal/registration/metrics"
	"enroll/internal/registration/models"
	"enroll/internal/registration/service"
	"enroll/internal/registration/store"
	"enroll/internal/registration/throttle"
	id "enroll/pkg/domain"
	"enroll/pkg/platform/circuit"
)

const (
	serviceName     = "enroll"
	auditQueueDepth = 1024
)

// main wires dependencies and runs the server and background janitors until
// SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	regMetrics := regmetrics.New()

	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Channel: cfg.Backend.Channel,
		OTPPath: cfg.Backend.OTPPath,
		Timeout: cfg.Backend.Timeout,
	},
		backend.WithLogger(log),
		backend.WithMetrics(regMetrics),
		backend.WithBreaker(circuit.New("registration-backend",
			circuit.WithFailureThreshold(cfg.Backend.BreakerFailures),
			circuit.WithSuccessThreshold(cfg.Backend.BreakerSuccesses),
		)),
	)
	if err != nil {
		return err
	}

	auditInbox := make(chan audit.Event, auditQueueDepth)
	auditStore := audit.NewInMemoryStore(
		audit.WithRetention(cfg.Audit.Retention),
		audit.WithMaxEventsPerSession(cfg.Audit.MaxEventsPerSession),
	)
	auditWorker := audit.NewWorker(auditStore, auditInbox)

	g, gctx := errgroup.WithContext(ctx)
	health := map[string]httpapi.HealthCheck{}

	orchOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(regMetrics),
		service.WithAuditPublisher(audit.NewAsyncPublisher(auditStore, auditInbox)),
		service.WithCampaign(cfg.Registration.Campaign),
		service.WithRedirectDelay(cfg.Registration.RedirectDelay),
	}
	if cfg.Throttle.Limit > 0 {
		policy := throttle.Policy{Limit: cfg.Throttle.Limit, Window: cfg.Throttle.Window}
		rdb, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
			health["redis"] = rdb.Health
			orchOpts = append(orchOpts, service.WithThrottle(throttle.NewRedis(rdb, policy)))
			log.Info("otp throttle backed by redis")
		} else {
			local := throttle.NewInMemory(policy)
			orchOpts = append(orchOpts, service.WithThrottle(local))
			g.Go(func() error { return local.StartCleanup(gctx, cfg.Registration.CleanupInterval) })
		}
	}

	orch, err := service.New(client, orchOpts...)
	if err != nil {
		return err
	}

	sessions := store.NewInMemory(
		store.WithTTL(cfg.Registration.SessionTTL),
		store.WithMetrics(regMetrics),
	)
	defer sessions.Close()

	countdownSeconds := cfg.Registration.CountdownSeconds
	wizard, err := service.NewWizard(sessions, orch,
		service.WithWizardLogger(log),
		service.WithSessionFactory(func(sessionID id.SessionID, now time.Time) *models.Session {
			return models.NewSession(sessionID, now, countdown.New(
				countdown.WithSeconds(countdownSeconds),
				countdown.WithOnExpire(regMetrics.IncrementCountdownExpired),
			))
		}),
	)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:  log,
		Metrics: platformmetrics.NewHTTP(),
		Health:  health,
	}, handler.New(wizard, log))
	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting enroll", "addr", cfg.Addr)
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout)
	})
	g.Go(func() error { return sessions.StartCleanup(gctx, cfg.Registration.CleanupInterval) })
	g.Go(func() error { return auditWorker.Run(gctx) })
	g.Go(func() error { return auditStore.StartCleanup(gctx, cfg.Registration.CleanupInterval) })

	return g.Wait()
}
