package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/atdaga/skrm-server/pkg/database"
	"github.com/atdaga/skrm-server/pkg/jwt"
	pkglog "github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/metrics"
	"github.com/atdaga/skrm-server/pkg/middleware"
	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/pkg/storage"
	"github.com/atdaga/skrm-server/tracker-service/internal/cache"
	"github.com/atdaga/skrm-server/tracker-service/internal/config"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/handler"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
	"github.com/atdaga/skrm-server/tracker-service/internal/service"
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

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "tracker-service",
	})
	logger := pkglog.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db,
		&domain.OrganizationModel{},
		&domain.MemberModel{},
		&domain.ProjectModel{},
		&domain.SprintModel{},
		&domain.SprintTaskModel{},
		&domain.TaskModel{},
		&domain.FeatureModel{},
		&sequence.CounterModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Redis backs the membership cache and, when selected, the allocator.
	var (
		redisClient     *redis.Client
		membershipCache cache.MembershipCache
	)
	if cfg.Redis.Address != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		membershipCache = cache.NewRedisMembershipCache(redisClient, cfg.Cache.Prefix)
		logger.Info().Msg("redis cache connected")
	}

	allocator, err := sequence.New(cfg.Sequence, db, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create sequence allocator")
	}
	allocator = sequence.Instrument(allocator)

	publisher, err := pubsub.NewPublisher(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create document storage")
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	// Initialize repositories
	orgRepo := repository.NewGormOrganizationRepository(db)
	memberRepo := repository.NewGormMemberRepository(db)
	projectRepo := repository.NewGormProjectRepository(db)
	sprintRepo := repository.NewGormSprintRepository(db)
	taskRepo := repository.NewGormTaskRepository(db)
	featureRepo := repository.NewGormFeatureRepository(db)

	// Initialize services
	access := service.NewAccessChecker(orgRepo, memberRepo, membershipCache, cfg.Cache.MembershipTTL)
	counters := service.Counters{Projects: projectRepo, Sprints: sprintRepo, Tasks: taskRepo, Features: featureRepo}
	services := handler.Services{
		Organizations: service.NewOrganizationService(orgRepo, service.NewNamespaceRegistry(orgRepo), access, counters, allocator),
		Members:       service.NewMemberService(memberRepo, access),
		Projects:      service.NewProjectService(projectRepo, access, publisher),
		Sprints:       service.NewSprintService(sprintRepo, taskRepo, access, publisher),
		Tasks:         service.NewTaskService(taskRepo, projectRepo, allocator, access, publisher),
		Features:      service.NewFeatureService(featureRepo, allocator, store, access, publisher),
		Docs:          service.NewDocService(store, featureRepo, access),
	}

	httpHandler := handler.NewHandler(services, middleware.NewAuthMiddleware(tokens))

	metrics.Register(prometheus.DefaultRegisterer)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(metrics.GinMiddleware("tracker-service"))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	httpHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().
		Str("addr", addr).
		Str("db_driver", cfg.Database.Driver).
		Str("sequence_driver", cfg.Sequence.Driver).
		Str("pubsub_driver", cfg.PubSub.Driver).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("tracker-service starting")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
