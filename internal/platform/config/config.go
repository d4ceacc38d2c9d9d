// Package config loads process configuration. Values resolve in order:
// built-in defaults, an optional YAML file, then PAYRECON_* environment
// variables (PAYRECON_SERVER_ADDR overrides server.addr).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"payrecon/internal/decision"
	"payrecon/internal/platform/kafka"
)

const envPrefix = "PAYRECON"

// Config is the full process configuration.
type Config struct {
	Server        Server        `mapstructure:"server"`
	Logging       Logging       `mapstructure:"logging"`
	Decision      Decision      `mapstructure:"decision"`
	Collaborators Collaborators `mapstructure:"collaborators"`
	Redis         RedisConfig   `mapstructure:"redis"`
	Postgres      Postgres      `mapstructure:"postgres"`
	Kafka         Kafka         `mapstructure:"kafka"`
	Notifier      Notifier      `mapstructure:"notifier"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Decision carries the engine tunables. Amounts are strings so they reach
// the engine without passing through float64.
type Decision struct {
	Epsilon                   string        `mapstructure:"epsilon"`
	HighValueThreshold        string        `mapstructure:"high_value_threshold"`
	HighValueAutoApproveLimit string        `mapstructure:"high_value_auto_approve_limit"`
	DuplicateLookback         time.Duration `mapstructure:"duplicate_lookback"`
	CollaboratorTimeout       time.Duration `mapstructure:"collaborator_timeout"`
	BatchConcurrency          int           `mapstructure:"batch_concurrency"`
}

// Collaborators points the engine at remote CRM, ERP and email services.
// An empty URL keeps the in-process mock for that collaborator.
type Collaborators struct {
	DirectoryURL     string        `mapstructure:"directory_url"`
	LedgerURL        string        `mapstructure:"ledger_url"`
	NotifierURL      string        `mapstructure:"notifier_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

// RedisConfig configures the notifier outbox. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Prefix       string        `mapstructure:"prefix"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Postgres configures the ledger and decision stores. An empty URL keeps
// both in memory.
type Postgres struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

// Kafka configures decision event publishing. No brokers disables it.
type Kafka struct {
	Brokers           []string `mapstructure:"brokers"`
	ClientID          string   `mapstructure:"client_id"`
	Topic             string   `mapstructure:"topic"`
	Group             string   `mapstructure:"group"`
	Partitions        int32    `mapstructure:"partitions"`
	ReplicationFactor int16    `mapstructure:"replication_factor"`
}

type Notifier struct {
	Recipients map[string][]string `mapstructure:"recipients"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("decision.epsilon", "0.01")
	v.SetDefault("decision.high_value_threshold", "50000")
	v.SetDefault("decision.high_value_auto_approve_limit", "")
	v.SetDefault("decision.duplicate_lookback", time.Duration(0))
	v.SetDefault("decision.collaborator_timeout", 2*time.Second)
	v.SetDefault("decision.batch_concurrency", 8)

	v.SetDefault("collaborators.directory_url", "")
	v.SetDefault("collaborators.ledger_url", "")
	v.SetDefault("collaborators.notifier_url", "")
	v.SetDefault("collaborators.timeout", 10*time.Second)
	v.SetDefault("collaborators.failure_threshold", 5)
	v.SetDefault("collaborators.success_threshold", 3)
	v.SetDefault("collaborators.cooldown", 30*time.Second)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "payrecon:notifier")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.client_id", "payrecon")
	v.SetDefault("kafka.topic", "payrecon.decisions")
	v.SetDefault("kafka.group", "payrecon-decision-materializer")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replication_factor", 1)
}

// Load resolves the configuration. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.Decision.EngineConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineConfig converts the settings into a validated decision config.
func (d Decision) EngineConfig() (decision.Config, error) {
	cfg := decision.DefaultConfig()

	var err error
	if cfg.Epsilon, err = decimal.NewFromString(d.Epsilon); err != nil {
		return decision.Config{}, fmt.Errorf("decision.epsilon: %w", err)
	}
	if cfg.HighValueThreshold, err = decimal.NewFromString(d.HighValueThreshold); err != nil {
		return decision.Config{}, fmt.Errorf("decision.high_value_threshold: %w", err)
	}
	if d.HighValueAutoApproveLimit != "" {
		limit, err := decimal.NewFromString(d.HighValueAutoApproveLimit)
		if err != nil {
			return decision.Config{}, fmt.Errorf("decision.high_value_auto_approve_limit: %w", err)
		}
		cfg.HighValueAutoApproveLimit = decimal.NewNullDecimal(limit)
	}
	cfg.DuplicateLookback = d.DuplicateLookback
	if d.CollaboratorTimeout > 0 {
		cfg.CollaboratorTimeout = d.CollaboratorTimeout
	}
	if d.BatchConcurrency > 0 {
		cfg.BatchConcurrency = d.BatchConcurrency
	}

	if err := cfg.Validate(); err != nil {
		return decision.Config{}, fmt.Errorf("decision config: %w", err)
	}
	return cfg, nil
}

// KafkaConfig returns the broker settings, or ok=false when publishing is off.
func (k Kafka) KafkaConfig() (kafka.Config, bool) {
	if len(k.Brokers) == 0 {
		return kafka.Config{}, false
	}
	return kafka.Config{
		Brokers:           k.Brokers,
		ClientID:          k.ClientID,
		Topic:             k.Topic,
		Group:             k.Group,
		Partitions:        k.Partitions,
		ReplicationFactor: k.ReplicationFactor,
	}, true
}
