// Package config defines the configuration structures of the hypocalcemia
// explanation service. No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/hypocal-explain/internal/domain/clinical"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // comma separated zap sinks
}

// Logging converts the section into the logger constructor's input.
func (l LogConfig) Logging() logging.LogConfig {
	out := logging.LogConfig{Level: l.Level, Format: l.Format}
	for _, p := range strings.Split(l.Output, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out.OutputPaths = append(out.OutputPaths, p)
		}
	}
	return out
}

// CounterfactualConfig holds the gradient search constants.
type CounterfactualConfig struct {
	LearningRate      float64 `mapstructure:"learning_rate"`
	MaxIterations     int     `mapstructure:"max_iterations"`
	GradientEpsilon   float64 `mapstructure:"gradient_epsilon"`
	Tolerance         float64 `mapstructure:"tolerance"`
	FeasibilityBudget float64 `mapstructure:"feasibility_budget"`
}

// EngineConfig holds the analysis defaults applied when a request leaves a
// parameter unset.
type EngineConfig struct {
	DefaultVariant   string               `mapstructure:"default_variant"`
	TargetRisk       float64              `mapstructure:"target_risk"`
	SensitivityRange float64              `mapstructure:"sensitivity_range"`
	StabilitySamples int                  `mapstructure:"stability_samples"`
	StabilitySeed    int64                `mapstructure:"stability_seed"`
	TrajectoryDays   int                  `mapstructure:"trajectory_days"`
	Counterfactual   CounterfactualConfig `mapstructure:"counterfactual"`
}

// RedisConfig holds Redis connection parameters for the report cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the assessment event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	RequiredAcks int           `mapstructure:"required_acks"` // -1 all, 0 none, 1 leader
	Async        bool          `mapstructure:"async"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure. Every infrastructure component
// and the explanation service read their settings from the relevant
// sub-struct.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Engine
	if _, err := clinical.ParseVariant(c.Engine.DefaultVariant); err != nil {
		return fmt.Errorf("config: engine.default_variant %q is invalid", c.Engine.DefaultVariant)
	}
	if c.Engine.TargetRisk <= 0 || c.Engine.TargetRisk >= 1 {
		return fmt.Errorf("config: engine.target_risk %g must lie in (0, 1)", c.Engine.TargetRisk)
	}
	if c.Engine.SensitivityRange <= 0 || c.Engine.SensitivityRange > 1 {
		return fmt.Errorf("config: engine.sensitivity_range %g must lie in (0, 1]", c.Engine.SensitivityRange)
	}
	if c.Engine.StabilitySamples < 1 {
		return fmt.Errorf("config: engine.stability_samples must be ≥ 1, got %d", c.Engine.StabilitySamples)
	}
	if c.Engine.TrajectoryDays < 0 {
		return fmt.Errorf("config: engine.trajectory_days must be ≥ 0, got %d", c.Engine.TrajectoryDays)
	}
	cf := c.Engine.Counterfactual
	if cf.LearningRate <= 0 || cf.GradientEpsilon <= 0 || cf.Tolerance <= 0 || cf.FeasibilityBudget <= 0 {
		return fmt.Errorf("config: engine.counterfactual parameters must be positive")
	}
	if cf.MaxIterations < 1 {
		return fmt.Errorf("config: engine.counterfactual.max_iterations must be ≥ 1, got %d", cf.MaxIterations)
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
		switch c.Kafka.RequiredAcks {
		case -1, 0, 1:
		default:
			return fmt.Errorf("config: kafka.required_acks %d is invalid; expected -1|0|1", c.Kafka.RequiredAcks)
		}
	}

	// Metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path)
	}

	return nil
}

//Personal.AI order the ending
