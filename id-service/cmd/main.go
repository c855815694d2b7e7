package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/id-service/internal/config"
	"github.com/atdaga/skrm-server/id-service/internal/generator"
	"github.com/atdaga/skrm-server/id-service/internal/handler"
	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/jwt"
	pkglog "github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/metrics"
	"github.com/atdaga/skrm-server/pkg/middleware"
	"github.com/atdaga/skrm-server/pkg/sequence"
)

func main() {
	configPath := flag.String("config", "./config", "directory containing config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		ServiceName: "id-service",
	})
	logger := pkglog.L()

	logger.Info().Msg("starting id-service")

	// Only the selected sequence driver's backend is opened.
	var (
		db          *gorm.DB
		redisClient *redis.Client
	)
	switch cfg.Sequence.Driver {
	case sequence.DriverDatabase, "":
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := database.AutoMigrate(db, &sequence.CounterModel{}); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
	case sequence.DriverRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	allocator, err := sequence.New(cfg.Sequence, db, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create sequence allocator")
	}
	allocator = sequence.Instrument(allocator)
	logger.Info().Str("sequence_driver", cfg.Sequence.Driver).Msg("sequence allocator initialized")

	metrics.Register(prometheus.DefaultRegisterer)
	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	idHandler := handler.NewHandler(generator.NewRegistry(allocator), middleware.NewAuthMiddleware(tokens))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(metrics.GinMiddleware("id-service"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	idHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("id-service starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
