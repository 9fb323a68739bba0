package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-rate-service/internal/app/background"
	"github.com/LavaJover/shvark-rate-service/internal/app/setup"
	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/logger"
)

func main() {
	loop := flag.Bool("loop", false, "keep scheduling fetches every scheduler.interval")
	cleanup := flag.Bool("cleanup", false, "delete history older than -days and exit")
	days := flag.Int("days", 0, "retention window in days for -cleanup (defaults to retention.days)")
	add := flag.String("add", "", "start tracking a pair, e.g. USD/EUR, and exit")
	list := flag.Bool("list", false, "print tracked pairs and exit")
	flag.Parse()

	cfg := config.MustLoad()
	slogger, closer, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer closer.Close()

	deps, err := setup.InitializeDependencies(cfg, slogger, nil)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	ucs, err := setup.InitializeUsecases(deps)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *add != "":
		pair, err := domain.ParsePair(*add)
		if err != nil {
			log.Fatalf("invalid pair: %v", err)
		}
		cp, err := ucs.Pairs.AddPair(pair.Base.Code(), pair.Quote.Code())
		if err != nil {
			log.Fatalf("failed to add pair: %v", err)
		}
		fmt.Printf("added %s (id %d)\n", cp.Pair, cp.ID)
		return

	case *list:
		pairs, err := ucs.Pairs.ListAllPairs()
		if err != nil {
			log.Fatalf("failed to list pairs: %v", err)
		}
		for _, p := range pairs {
			fmt.Printf("%d\t%s\tactive=%t\n", p.ID, p.Pair, p.Active)
		}
		return

	case *cleanup:
		n := *days
		if n <= 0 {
			n = cfg.Retention.Days
		}
		report, err := ucs.Retention.SweepOlderThanDays(ctx, n)
		for code, deleted := range report.Deleted {
			fmt.Printf("%s\t%d deleted\n", code, deleted)
		}
		fmt.Printf("total %d deleted older than %s\n", report.Total, report.Cutoff.Format("2006-01-02 15:04:05"))
		if err != nil {
			log.Fatalf("cleanup finished with errors: %v", err)
		}
		return
	}

	messaging := setup.InitMessaging(cfg.KafkaService, deps.DB, slogger)
	defer messaging.Close()
	pipeline := setup.InitializePipeline(deps, messaging.Queue, messaging.Queue)

	if !*loop {
		report, err := pipeline.Scheduler.ScheduleFetches(ctx)
		if err != nil {
			log.Fatalf("failed to schedule fetches: %v", err)
		}
		fmt.Printf("scheduled %d fetch tasks, %d failed\n", report.Scheduled, report.Failed)
		return
	}

	tasks := &background.BackgroundTasks{
		Scheduler:         pipeline.Scheduler,
		SchedulerInterval: cfg.Scheduler.Interval,
		Log:               slogger,
	}
	slogger.Info("scheduler loop started", "interval", cfg.Scheduler.Interval)
	tasks.StartAll(ctx)
	tasks.Wait()
	slogger.Info("scheduler loop stopped")
}
