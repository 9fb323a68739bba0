package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-rate-service/internal/app/background"
	"github.com/LavaJover/shvark-rate-service/internal/app/setup"
	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/router"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rate-service/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/ulule/limiter/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	// Reading config
	cfg := config.MustLoad()

	slogger, closer, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewRateMetrics(reg)

	deps, err := setup.InitializeDependencies(cfg, slogger, m)
	if err != nil {
		slogger.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUsecases(deps)
	if err != nil {
		slogger.Error("failed to init usecases", "error", err)
		os.Exit(1)
	}

	var rateLimiter *limiter.Limiter
	if cfg.RateLimit.Enabled {
		if rateLimiter, err = middleware.NewLimiter(cfg.RateLimit.Rate); err != nil {
			slogger.Error("failed to init rate limiter", "error", err)
			os.Exit(1)
		}
	}

	exposeErrors := !cfg.IsProduction()
	engine, err := router.New(router.Options{
		Logger:         slogger,
		Metrics:        m,
		Gatherer:       reg,
		Limiter:        rateLimiter,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		ExposeErrors:   exposeErrors,
		Release:        cfg.IsProduction(),
		Rates:          handlers.NewRateHandler(ucs.Query, exposeErrors),
		Pairs:          handlers.NewPairHandler(ucs.Pairs, ucs.Query, exposeErrors),
	})
	if err != nil {
		slogger.Error("failed to init router", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	// Creating gRPC server
	grpcServer := grpc.NewServer()
	healthHandler := grpcapi.NewHealthHandler(deps.Source, slogger, m)
	healthHandler.Register(grpcServer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks := &background.BackgroundTasks{
		Retention:         ucs.Retention,
		RetentionDays:     cfg.Retention.Days,
		RetentionInterval: cfg.Retention.Interval,
		Health:            healthHandler,
		HealthInterval:    cfg.GRPCServer.HealthInterval,
		Log:               slogger,
	}
	tasks.StartAll(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slogger.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		slogger.Info("gRPC server started", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		healthHandler.Shutdown()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slogger.Error("service stopped with error", "error", err)
	}
	stop()
	tasks.Wait()
	slogger.Info("service stopped")
}
