package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/app/setup"
	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rate-service/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	stage := flag.String("stage", "all", "pipeline stage to consume: fetch, save or all")
	metricsAddr := flag.String("metrics-addr", ":9102", "address of the /metrics endpoint, empty to disable")
	flag.Parse()

	cfg := config.MustLoad()
	slogger, closer, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewRateMetrics(reg)

	deps, err := setup.InitializeDependencies(cfg, slogger, m)
	if err != nil {
		slogger.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	messaging := setup.InitMessaging(cfg.KafkaService, deps.DB, slogger)
	defer messaging.Close()
	pipeline := setup.InitializePipeline(deps, messaging.Queue, messaging.Queue)

	consumerCfg := func(topic, group, stage string) kafka.ConsumerConfig {
		return kafka.ConsumerConfig{
			Brokers:     cfg.KafkaService.Brokers,
			Topic:       topic,
			GroupID:     group,
			Stage:       stage,
			MaxAttempts: cfg.KafkaService.MaxAttempts,
			RetryDelay:  cfg.KafkaService.RetryDelay,
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	runFetch := *stage == "all" || *stage == domain.StageFetch
	runSave := *stage == "all" || *stage == domain.StageSave
	if !runFetch && !runSave {
		slogger.Error("unknown stage", "stage", *stage)
		os.Exit(2)
	}

	if runFetch {
		c := kafka.NewConsumer(consumerCfg(cfg.KafkaService.FetchTopic, cfg.KafkaService.FetchGroupID, domain.StageFetch),
			messaging.DeadLetters, slogger, m)
		g.Go(func() error { return c.Consume(gctx, kafka.FetchHandler(pipeline.Fetch.Handle)) })
	}
	if runSave {
		c := kafka.NewConsumer(consumerCfg(cfg.KafkaService.SaveTopic, cfg.KafkaService.SaveGroupID, domain.StageSave),
			messaging.DeadLetters, slogger, m)
		g.Go(func() error { return c.Consume(gctx, kafka.SaveHandler(pipeline.Save.Handle)) })
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	slogger.Info("rate worker started", "stage", *stage, "brokers", cfg.KafkaService.Brokers)
	if err := g.Wait(); err != nil {
		slogger.Error("rate worker stopped with error", "error", err)
		os.Exit(1)
	}
	slogger.Info("rate worker stopped")
}
