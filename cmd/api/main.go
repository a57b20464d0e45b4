package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategystore/internal/catalog"
	"strategystore/internal/middleware"
	"strategystore/internal/repository"
	"strategystore/internal/routes"
	"strategystore/internal/schedule"
	"strategystore/internal/service"
	"strategystore/internal/stream"
	"strategystore/pkg/config"

	logrus "github.com/sirupsen/logrus"
)

func main() {
	settings, err := config.Load(os.Getenv("STRATEGY_CONFIG_FILE"))
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}
	config.InitLogger(settings.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub()

	opts := []service.Option{service.WithSinks(hub)}

	// Without a database the catalog is memory-only.
	var runner *schedule.Runner
	if settings.DB.Enabled() {
		db, err := config.InitDB(settings.DB)
		if err != nil {
			logrus.Fatal(err)
		}
		opts = append(opts, service.WithRepositories(
			repository.NewStrategyRepository(db),
			repository.NewCatalogStatRepository(db),
		))
		runner = schedule.NewRunner(time.Minute)
	} else {
		logrus.Warn("database not configured, strategies will not survive a restart")
	}

	if settings.RabbitMQ.Enabled() {
		conn, err := config.InitRabbitMQ(settings.RabbitMQ)
		if err != nil {
			logrus.Fatal(err)
		}
		defer conn.Close()

		pub, err := config.NewPublisher(conn)
		if err != nil {
			logrus.Fatal(err)
		}
		defer pub.Close()
		opts = append(opts, service.WithSinks(service.NewQueueSink(pub, settings.RabbitMQ.EventsQueue)))
	} else {
		logrus.Info("RabbitMQ not configured, skipping event publishing")
	}

	svc := service.NewStrategyService(catalog.New(), opts...)
	if err := svc.Load(ctx); err != nil {
		logrus.Fatal("Failed to load strategies: ", err)
	}

	if runner != nil {
		if err := runner.Add("reconcile", settings.Schedule.ReconcileSpec, svc.Reconcile); err != nil {
			logrus.Fatal(err)
		}
		runner.Start()
	}

	r := routes.SetupRouter(routes.Deps{
		Store:    svc,
		Stream:   hub,
		Identity: middleware.IdentityConfig{Secret: []byte(settings.Auth.JWTSecret)},
		RateLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: settings.RateLimit.RequestsPerSecond,
			Burst:             settings.RateLimit.Burst,
		},
		AllowedOrigins: settings.Server.AllowedOrigins,
	})
	if settings.Auth.JWTSecret == "" {
		logrus.Warnf("auth.jwt_secret not set, trusting the %s header", middleware.CallerHeader)
	}

	srv := &http.Server{
		Addr:              ":" + settings.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("port", settings.Server.Port).Info("strategy store listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	svc.Close()
	hub.Close()
	if runner != nil {
		runner.Stop(shutdownCtx)
		if err := svc.Reconcile(shutdownCtx); err != nil {
			logrus.Errorf("final reconcile: %v", err)
		}
	}
}
