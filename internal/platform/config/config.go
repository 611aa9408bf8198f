package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	pstrings "trustmatrix/pkg/platform/strings"
)

// Config holds application level configuration aggregated from env and an
// optional config file.
type Config struct {
	Server       Server
	Log          Log
	Database     Database
	Redis        RedisConfig
	Kafka        Kafka
	Verification Verification
	Notify       Notify
	Scheduler    Scheduler
	RateLimit    RateLimit
	Telemetry    Telemetry
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

type Log struct {
	Level string
}

// Database configures PostgreSQL. An empty URL selects the in-memory stores.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// RedisConfig configures the optional Redis stream notification sink.
type RedisConfig struct {
	URL          string
	Stream       string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional Kafka notification sink.
type Kafka struct {
	Brokers    []string
	Topic      string
	Partitions int32
	Replicas   int16
}

type Verification struct {
	StoreTimeout time.Duration
	TxTimeout    time.Duration
	BcryptCost   int
}

type Notify struct {
	Timeout   time.Duration
	QueueSize int
}

type Scheduler struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
}

type RateLimit struct {
	RefillPerSecond int
	Burst           int
}

// Telemetry configures OTLP trace export. The exporter reads the standard
// OTEL_EXPORTER_OTLP_* variables when Endpoint is empty.
type Telemetry struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRatio float64
}

// Load reads configuration from TRUST_* environment variables and an
// optional config.yaml in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	// Use a default for development; override in production.
	v.SetDefault("server.jwtsigningkey", "dev-secret-key-change-in-production")
	v.SetDefault("server.jwtissuer", "trustmatrix")
	v.SetDefault("server.jwtaudience", "trustmatrix-api")

	v.SetDefault("log.level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.maxopenconns", 20)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 30*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.stream", "trust.tier-upgrades")
	v.SetDefault("redis.poolsize", 10)
	v.SetDefault("redis.minidleconns", 2)
	v.SetDefault("redis.dialtimeout", 5*time.Second)
	v.SetDefault("redis.readtimeout", 3*time.Second)
	v.SetDefault("redis.writetimeout", 3*time.Second)

	// Comma separated when set through TRUST_KAFKA_BROKERS.
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "trust.tier-upgrades")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replicas", 1)

	v.SetDefault("verification.storetimeout", 3*time.Second)
	v.SetDefault("verification.txtimeout", 5*time.Second)
	v.SetDefault("verification.bcryptcost", 10)

	v.SetDefault("notify.timeout", 5*time.Second)
	v.SetDefault("notify.queuesize", 256)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.concurrency", 8)

	v.SetDefault("ratelimit.refillpersecond", 2)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.servicename", "trustmatrix")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.sampleratio", 1.0)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.JWTSigningKey == "" {
		return fmt.Errorf("server.jwtsigningkey is required")
	}
	if c.Verification.StoreTimeout <= 0 || c.Verification.TxTimeout <= 0 {
		return fmt.Errorf("verification timeouts must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify.queuesize must be positive")
	}
	if c.Scheduler.Enabled && (c.Scheduler.Interval <= 0 || c.Scheduler.Concurrency <= 0) {
		return fmt.Errorf("scheduler interval and concurrency must be positive")
	}
	if c.RateLimit.RefillPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit refill and burst must be positive")
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.ServiceName == "" {
			return fmt.Errorf("telemetry.servicename is required when telemetry is enabled")
		}
		if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
			return fmt.Errorf("telemetry.sampleratio must be within [0, 1]")
		}
	}
	return nil
}
