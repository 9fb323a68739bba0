package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal      = "local"
	EnvDev        = "dev"
	EnvProduction = "production"
)

type RateConfig struct {
	Env          string `yaml:"env" env:"RATE_ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	RateDB       `yaml:"rate_db"`
	Storage      `yaml:"storage"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	RateSource   `yaml:"rate_source"`
	Registry     `yaml:"registry"`
	Scheduler    `yaml:"scheduler"`
	Retention    `yaml:"retention"`
	Query        `yaml:"query"`
	RateLimit    `yaml:"rate_limit"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"RATE_HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"RATE_HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"RATE_HTTP_ALLOWED_ORIGINS" env-separator:","`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"RATE_GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"RATE_GRPC_PORT" env-default:"50051"`
	// HealthInterval is how often the rate source availability is re-probed.
	HealthInterval time.Duration `yaml:"health_interval" env-default:"30s"`
}

type RateDB struct {
	Dsn             string        `yaml:"dsn" env:"RATE_DB_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"20"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate" env-default:"false"`
	MigrationsPath  string        `yaml:"migrations_path" env:"RATE_MIGRATIONS_PATH" env-default:"migrations"`
}

// Storage selects the history backend: "postgres" or "memory".
type Storage struct {
	Driver string `yaml:"driver" env:"RATE_STORAGE_DRIVER" env-default:"postgres"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"RATE_LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"RATE_LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"RATE_LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Brokers         []string      `yaml:"brokers" env:"RATE_KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	FetchTopic      string        `yaml:"fetch_topic" env-default:"rates.fetch"`
	SaveTopic       string        `yaml:"save_topic" env-default:"rates.save"`
	DeadLetterTopic string        `yaml:"dead_letter_topic" env-default:"rates.dead-letter"`
	FetchGroupID    string        `yaml:"fetch_group_id" env-default:"rate-fetch-workers"`
	SaveGroupID     string        `yaml:"save_group_id" env-default:"rate-save-workers"`
	MaxAttempts     int           `yaml:"max_attempts" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env-default:"2s"`

	// DeadLetterWebhook receives a JSON summary of every dead letter when set.
	DeadLetterWebhook string `yaml:"dead_letter_webhook" env:"RATE_DEAD_LETTER_WEBHOOK"`
}

type RateSource struct {
	Provider  string        `yaml:"provider" env:"RATE_SOURCE_PROVIDER" env-default:"freecurrency"`
	Fallbacks []string      `yaml:"fallbacks" env:"RATE_SOURCE_FALLBACKS" env-separator:","`
	BaseURL   string        `yaml:"base_url" env:"RATE_SOURCE_BASE_URL" env-default:"https://api.freecurrencyapi.com"`
	APIKey    string        `yaml:"api_key" env:"EXCHANGE_RATE_API_KEY"`
	Timeout   time.Duration `yaml:"timeout" env:"RATE_SOURCE_TIMEOUT" env-default:"30s"`
}

type RegistryEntry struct {
	Base   string `yaml:"base"`
	Quote  string `yaml:"quote"`
	Target string `yaml:"target"`
}

// Registry replaces the built-in routing table when Pairs is not empty.
type Registry struct {
	Pairs []RegistryEntry `yaml:"pairs"`
}

type Scheduler struct {
	Interval time.Duration `yaml:"interval" env:"RATE_SCHEDULER_INTERVAL" env-default:"1m"`
}

type Retention struct {
	Days     int           `yaml:"days" env:"RATE_RETENTION_DAYS" env-default:"30"`
	Interval time.Duration `yaml:"interval" env:"RATE_RETENTION_INTERVAL" env-default:"24h"`
}

type Query struct {
	DateMissPolicy string `yaml:"date_miss_policy" env:"RATE_DATE_MISS_POLICY" env-default:"latest"`
}

type RateLimit struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Rate    string `yaml:"rate" env:"RATE_LIMIT" env-default:"120-M"`
}

func (c *RateConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the YAML file at path with environment overrides. An empty
// path reads configuration from the environment only.
func Load(path string) (*RateConfig, error) {
	var cfg RateConfig
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RateConfig) validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.RateDB.Dsn == "" {
			return fmt.Errorf("rate_db.dsn is required for the postgres storage driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention.days must be positive, got %d", c.Retention.Days)
	}
	if c.Scheduler.Interval <= 0 || c.Retention.Interval <= 0 || c.GRPCServer.HealthInterval <= 0 {
		return fmt.Errorf("scheduler, retention and health intervals must be positive")
	}
	if c.KafkaService.MaxAttempts <= 0 {
		return fmt.Errorf("kafka-service.max_attempts must be positive, got %d", c.KafkaService.MaxAttempts)
	}
	return nil
}

func MustLoad() *RateConfig {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("RATE_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("RATE_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
