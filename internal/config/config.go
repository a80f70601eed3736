package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// Config holds all configuration for the margin optimizer service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"` // consume window batches from Kafka
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"` // Topic to consume from (performance_windows)
	GroupID string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"` // mirror state and keep the run audit trail in Redis
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	RunTTL    time.Duration `mapstructure:"run_ttl"` // retention for run records; 0 keeps them forever
}

// PlatformConfig holds ad platform API configuration
type PlatformConfig struct {
	MetricsURL string        `mapstructure:"metrics_url"` // reporting endpoint; empty serves mock windows
	UpdateURL  string        `mapstructure:"update_url"`  // margin update endpoint; empty makes updates a logged no-op
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// OptimizerConfig holds the hill-climb tuning parameters
type OptimizerConfig struct {
	BaselineMargin          float64       `mapstructure:"baseline_margin"`            // starting margin in percent
	Step                    float64       `mapstructure:"step"`                       // initial margin step in percent points
	MinStep                 float64       `mapstructure:"min_step"`                   // floor the step never halves below
	GuardrailDropPct        float64       `mapstructure:"guardrail_drop_pct"`         // max tolerated drop in sRPM or bid rate (percent)
	MinProfitImprovementPct float64       `mapstructure:"min_profit_improvement_pct"` // profit gain required to accept a climb (percent)
	StatePath               string        `mapstructure:"state_path"`                 // local state file
	TickInterval            time.Duration `mapstructure:"tick_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "performance_windows")
	v.SetDefault("kafka.group_id", "margin-optimizer")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "margin_optimizer")
	v.SetDefault("redis.run_ttl", time.Duration(0))

	v.SetDefault("platform.metrics_url", "")
	v.SetDefault("platform.update_url", "")
	v.SetDefault("platform.api_key", "")
	v.SetDefault("platform.timeout", 10*time.Second)

	v.SetDefault("optimizer.baseline_margin", 35.0)
	v.SetDefault("optimizer.step", 1.0)
	v.SetDefault("optimizer.min_step", 0.25)
	v.SetDefault("optimizer.guardrail_drop_pct", 10.0)
	v.SetDefault("optimizer.min_profit_improvement_pct", 2.0)
	v.SetDefault("optimizer.state_path", "data/optimizer_state.json")
	v.SetDefault("optimizer.tick_interval", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("MARGIN_OPTIMIZER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToOptimizerParams converts config to hill-climb parameters
func (c *OptimizerConfig) ToOptimizerParams() models.OptimizerParams {
	return models.OptimizerParams{
		BaselineMargin:          c.BaselineMargin,
		Step:                    c.Step,
		MinStep:                 c.MinStep,
		GuardrailDropPct:        c.GuardrailDropPct,
		MinProfitImprovementPct: c.MinProfitImprovementPct,
	}
}
