package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerRequestTimeout  = 10 * time.Second
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 15 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultEngineVariant          = "baseline"
	DefaultTargetRisk             = 0.05
	DefaultSensitivityRange       = 0.10
	DefaultStabilitySamples       = 100
	DefaultStabilitySeed    int64 = 42
	DefaultTrajectoryDays         = 7

	DefaultLearningRate      = 0.01
	DefaultGradientEpsilon   = 0.001
	DefaultMaxIterations     = 100
	DefaultRiskTolerance     = 0.005
	DefaultFeasibilityBudget = 10.0

	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPoolSize = 10
	DefaultRedisTTL      = 10 * time.Minute
	DefaultRedisPrefix   = "hypocal:"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopic        = "hypocal.assessments"
	DefaultKafkaBatchSize    = 100
	DefaultKafkaBatchTimeout = 50 * time.Millisecond
	DefaultKafkaRequiredAcks = -1

	DefaultMetricsNamespace = "hypocal"
	DefaultMetricsSubsystem = "explain"
	DefaultMetricsPath      = "/metrics"
)

// NewDefaultConfig returns a Config with every field at its default. The
// result passes Validate.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	cfg.Engine.StabilitySeed = DefaultStabilitySeed
	cfg.Kafka.RequiredAcks = DefaultKafkaRequiredAcks
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields already set by the caller are left unchanged so explicit
// configuration always wins. Booleans, the stability seed and kafka acks are
// left as given.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultServerRequestTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	e := &cfg.Engine
	if e.DefaultVariant == "" {
		e.DefaultVariant = DefaultEngineVariant
	}
	if e.TargetRisk == 0 {
		e.TargetRisk = DefaultTargetRisk
	}
	if e.SensitivityRange == 0 {
		e.SensitivityRange = DefaultSensitivityRange
	}
	if e.StabilitySamples == 0 {
		e.StabilitySamples = DefaultStabilitySamples
	}
	if e.TrajectoryDays == 0 {
		e.TrajectoryDays = DefaultTrajectoryDays
	}
	if e.Counterfactual.LearningRate == 0 {
		e.Counterfactual.LearningRate = DefaultLearningRate
	}
	if e.Counterfactual.MaxIterations == 0 {
		e.Counterfactual.MaxIterations = DefaultMaxIterations
	}
	if e.Counterfactual.GradientEpsilon == 0 {
		e.Counterfactual.GradientEpsilon = DefaultGradientEpsilon
	}
	if e.Counterfactual.Tolerance == 0 {
		e.Counterfactual.Tolerance = DefaultRiskTolerance
	}
	if e.Counterfactual.FeasibilityBudget == 0 {
		e.Counterfactual.FeasibilityBudget = DefaultFeasibilityBudget
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

//Personal.AI order the ending
