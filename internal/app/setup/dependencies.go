package setup

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/kafka"
	eventlogger "github.com/LavaJover/shvark-rate-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/ratesource"
	"github.com/LavaJover/shvark-rate-service/internal/usecase"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config   *config.RateConfig
	Log      *slog.Logger
	Metrics  *metrics.RateMetrics
	Registry *domain.PairRegistry
	// DB is nil with the memory storage driver.
	DB           *gorm.DB
	Repositories *Repositories
	Source       *usecase.RateSourceChain
}

type Repositories struct {
	History domain.HistoryRepository
	Pairs   domain.CurrencyPairRepository
}

func InitializeDependencies(cfg *config.RateConfig, log *slog.Logger, m *metrics.RateMetrics) (*Dependencies, error) {
	registry, err := BuildRegistry(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("pair registry: %w", err)
	}

	deps := &Dependencies{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Registry: registry,
	}

	switch cfg.Storage.Driver {
	case "memory":
		deps.Repositories = &Repositories{
			History: memory.NewHistoryRepository(),
			Pairs:   memory.NewCurrencyPairRepository(),
		}
	default:
		db, err := postgres.InitDB(&cfg.RateDB)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		history := repository.NewDefaultHistoryRepository(db)
		if cfg.RateDB.AutoMigrate {
			if err := history.EnsureTables(registry.Targets()); err != nil {
				return nil, fmt.Errorf("history tables: %w", err)
			}
		}
		deps.DB = db
		deps.Repositories = &Repositories{
			History: history,
			Pairs:   repository.NewDefaultCurrencyPairRepository(db),
		}
	}

	source, err := initRateSource(cfg.RateSource, log, m)
	if err != nil {
		return nil, fmt.Errorf("rate source: %w", err)
	}
	deps.Source = source

	log.Info("dependencies initialized",
		"storage", cfg.Storage.Driver,
		"pairs", registry.SupportedPairs(),
		"rate_source", source.String(),
	)
	return deps, nil
}

func initRateSource(cfg config.RateSource, log *slog.Logger, m *metrics.RateMetrics) (*usecase.RateSourceChain, error) {
	opts := ratesource.Options{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Timeout: cfg.Timeout}

	primary, err := ratesource.New(cfg.Provider, opts)
	if err != nil {
		return nil, err
	}
	fallbacks := make([]domain.RateSource, 0, len(cfg.Fallbacks))
	for _, name := range cfg.Fallbacks {
		fb, err := ratesource.New(name, opts)
		if err != nil {
			return nil, err
		}
		fallbacks = append(fallbacks, fb)
	}
	return usecase.NewRateSourceChain(log, m, primary, fallbacks...), nil
}

// Messaging is the Kafka side of the pipeline.
type Messaging struct {
	Publisher   *kafka.DefaultKafkaPublisher
	Queue       *kafka.TaskQueue
	DeadLetters kafka.DeadLetterSink
}

func InitMessaging(cfg config.KafkaService, db *gorm.DB, log *slog.Logger) *Messaging {
	pub := kafka.NewDefaultKafkaPublisher(cfg.Brokers)
	sinks := kafka.NewMultiSink(log, kafka.NewDeadLetterPublisher(pub, cfg.DeadLetterTopic))
	if db != nil {
		sinks.Add(eventlogger.NewPGTaskEventLogger(db))
	}
	if cfg.DeadLetterWebhook != "" {
		sinks.Add(notifier.NewWebhookNotifier(cfg.DeadLetterWebhook, log))
	}
	return &Messaging{
		Publisher:   pub,
		Queue:       kafka.NewTaskQueue(pub, cfg.FetchTopic, cfg.SaveTopic),
		DeadLetters: sinks,
	}
}

func (m *Messaging) Close() error {
	return m.Publisher.Close()
}

func (d *Dependencies) Close() error {
	if d.DB == nil {
		return nil
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
