package main

import (
	"context"
	"fmt"

	"github.com/turtacn/hypocal-explain/internal/application/explain"
	"github.com/turtacn/hypocal-explain/internal/config"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/database/redis"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hypocal-explain/internal/infrastructure/monitoring/prometheus"
	shap "github.com/turtacn/hypocal-explain/internal/intelligence/hypocal_shap"
	httpapi "github.com/turtacn/hypocal-explain/internal/interfaces/http"
	"github.com/turtacn/hypocal-explain/internal/interfaces/http/handlers"
	"github.com/turtacn/hypocal-explain/internal/interfaces/http/middleware"
)

// app owns the server and the infrastructure clients it depends on.
type app struct {
	server   *httpapi.Server
	service  explain.Service
	metrics  *prometheus.AppMetrics
	redis    *redis.Client
	producer *kafka.Producer
	logger   logging.Logger
}

func newApp(cfg *config.Config, logger logging.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	opts := []explain.Option{explain.WithLogger(logger)}
	var checkers []handlers.HealthChecker

	// Metrics
	routerCfg := httpapi.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
		Mode:           cfg.Server.Mode,
	}
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.metrics = prometheus.NewAppMetrics(collector)
		opts = append(opts, explain.WithRecorder(a.metrics))
		routerCfg.Recorder = a.metrics
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.MetricsHandler = collector.Handler()
	}

	// Report cache
	if cfg.Redis.Enabled {
		a.redis, err = redis.NewClient(&redis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		cache := redis.NewRedisCache(a.redis, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		n, flushErr := explain.FlushStaleReports(flushCtx, cache, version, cfg.Redis.DefaultTTL)
		cancel()
		if flushErr != nil {
			logger.Warn("stale report flush failed", logging.Err(flushErr))
		} else if n > 0 {
			logger.Info("flushed reports from a previous build", logging.Int64("count", n))
		}
		opts = append(opts, explain.WithCache(cache, cfg.Redis.DefaultTTL))
		checkers = append(checkers, handlers.CheckerFunc("redis", a.redis.Ping))
	}

	// Assessment events
	if cfg.Kafka.Enabled {
		a.producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RequiredAcks: cfg.Kafka.RequiredAcks,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Async:        cfg.Kafka.Async,
			AsyncErrorHandler: func(err error, msg *kafka.Message) {
				logger.Warn("async publish failed",
					logging.String("topic", msg.Topic),
					logging.Err(err))
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		opts = append(opts, explain.WithPublisher(kafka.NewEventPublisher(a.producer, cfg.Kafka.Topic, logger)))
		checkers = append(checkers, handlers.CheckerFunc("kafka", a.producer.Ping))
	}

	a.service = explain.NewService(shap.NewEngine(nil), cfg.Engine, opts...)

	var healthRecorder handlers.HealthRecorder
	if a.metrics != nil {
		healthRecorder = a.metrics
	}
	routerCfg.ExplainHandler = handlers.NewExplainHandler(a.service)
	routerCfg.HealthHandler = handlers.NewHealthHandler(version, healthRecorder, checkers...)
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Metrics.Enabled && cfg.Metrics.Path != config.DefaultMetricsPath {
		logCfg.SkipPaths = append(logCfg.SkipPaths, cfg.Metrics.Path)
	}
	routerCfg.Logging = &logCfg

	a.server = httpapi.NewServer(cfg.Server, httpapi.NewRouter(routerCfg), logger)
	return a, nil
}

// Close releases the infrastructure clients. It is safe on a partially
// built app.
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
