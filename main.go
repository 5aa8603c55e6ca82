package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/cache"
	cfclient "dev-pulse/infrastructure/clients/codeforces"
	gcalclient "dev-pulse/infrastructure/clients/gcalendar"
	ghclient "dev-pulse/infrastructure/clients/github"
	lcclient "dev-pulse/infrastructure/clients/leetcode"
	trelloclient "dev-pulse/infrastructure/clients/trello"
	"dev-pulse/infrastructure/configuration"
	"dev-pulse/infrastructure/credentials"
	"dev-pulse/infrastructure/events"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/persistence"
	"dev-pulse/infrastructure/queue"
	"dev-pulse/infrastructure/scheduler"
	httpHandler "dev-pulse/interfaces/http"
	"dev-pulse/server"
	"dev-pulse/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	db, err := initiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Database initialization failed")
	}
	// DDL bootstrap covers the Postgres path; MSSQL schemas are managed
	// by the deployment pipeline.
	if os.Getenv("ENV") != "production" {
		if err := persistence.EnsureSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Fatal("Schema migration failed")
		}
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without the raw payload archive")
		mongoDb = nil
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Redis is required for the job queue")
	}
	logger.GetLogger().Info("Redis client initialized successfully.")

	pubSubClient, err := events.NewPubsubClient(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without it")
		pubSubClient = nil
	}
	azServiceBusClient, err := events.NewServiceBusClient(configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without it")
		azServiceBusClient = nil
	}
	publisher := events.NewPublisher(pubSubClient, configuration.C.Pubsub.Topic, azServiceBusClient, configuration.C.ServiceBus.Queue)

	vault, err := credentials.NewAESVault(configuration.C.Vault.Key)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Credential vault initialization failed")
	}

	// Repository wiring: MSSQL in production, otherwise PostgreSQL.
	var (
		userRepository       repository.IUser
		connectionRepository repository.IConnection
	)
	if os.Getenv("ENV") == "production" && configuration.C.Database.Mssql.Host != "" {
		userRepository = persistence.NewUserRepositoryMSSQL(db)
		connectionRepository = persistence.NewConnectionRepositoryMSSQL(db)
	} else {
		userRepository = persistence.NewUserRepository(db)
		connectionRepository = persistence.NewConnectionRepository(db)
	}
	statRepository := persistence.NewPlatformStatRepository(db)
	heatmapRepository := persistence.NewHeatmapRepository(db)
	leaderboardRepository := persistence.NewLeaderboardRepository(db)
	syncJobRepository := persistence.NewSyncJobRepository(db)
	missionRepository := persistence.NewMissionRepository(db)
	rawArchive := persistence.NewRawArchiveRepository(mongoDb)

	// Platform adapter factories; each is built on first use.
	platforms := configuration.C.Platforms
	factories := map[model.Platform]usecase.AdapterFactory{
		model.PlatformGitHub: func() repository.IPlatformAdapter {
			return ghclient.NewGitHubClient(
				&ghclient.Config{BaseURL: platforms.GitHub.BaseURL, Timeout: platforms.GitHub.Timeout},
				connectionRepository, vault, statRepository, rawArchive)
		},
		model.PlatformLeetCode: func() repository.IPlatformAdapter {
			return lcclient.NewLeetCodeClient(
				&lcclient.Config{BaseURL: platforms.LeetCode.BaseURL, Timeout: platforms.LeetCode.Timeout},
				connectionRepository, vault, statRepository, rawArchive)
		},
		model.PlatformCodeforces: func() repository.IPlatformAdapter {
			return cfclient.NewCodeforcesClient(
				&cfclient.Config{BaseURL: platforms.Codeforces.BaseURL, Timeout: platforms.Codeforces.Timeout},
				connectionRepository, statRepository, rawArchive)
		},
		model.PlatformGoogleCalendar: func() repository.IPlatformAdapter {
			return gcalclient.NewGoogleCalendarClient(
				&gcalclient.Config{
					ClientID:     platforms.GoogleCalendar.ClientID,
					ClientSecret: platforms.GoogleCalendar.ClientSecret,
					CalendarID:   platforms.GoogleCalendar.CalendarID,
				},
				connectionRepository, vault, statRepository, rawArchive)
		},
		model.PlatformTrello: func() repository.IPlatformAdapter {
			return trelloclient.NewTrelloClient(
				&trelloclient.Config{BaseURL: platforms.Trello.BaseURL, Timeout: platforms.Trello.Timeout},
				connectionRepository, vault, statRepository, rawArchive)
		},
	}
	registry := usecase.NewIntegrationRegistry(factories, connectionRepository)

	queueCfg := configuration.C.Queue
	jobQueue := queue.NewRedisQueue(redisClient, queue.Options{
		MaxAttempts:    queueCfg.MaxAttempts,
		BackoffBase:    queueCfg.BackoffBase,
		BackoffCap:     queueCfg.BackoffCap,
		RetentionCount: queueCfg.RetentionCount,
	})
	for _, lane := range []model.Lane{model.LaneSync, model.LaneRecalc} {
		if n, err := jobQueue.ReclaimStale(ctx, lane); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while reclaiming in-flight jobs")
		} else if n > 0 {
			logger.GetLogger().WithField("count", n).WithField("lane", lane).Info("Re-delivered in-flight jobs from previous run")
		}
	}

	heatmapUsecase := usecase.NewHeatmapUsecase(statRepository, heatmapRepository)
	streakUsecase := usecase.NewStreakUsecase(heatmapRepository, userRepository)
	pointsUsecase := usecase.NewPointsUsecase(statRepository, missionRepository, userRepository)
	statsUsecase := usecase.NewStatsUsecase(
		userRepository, statRepository, connectionRepository, missionRepository,
		heatmapUsecase, streakUsecase, pointsUsecase)
	leaderboardCache := cache.NewLeaderboardCache(redisClient)
	leaderboardUsecase := usecase.NewLeaderboardUsecase(
		leaderboardRepository, userRepository, pointsUsecase, leaderboardCache,
		configuration.C.Leaderboard.CacheTTL, configuration.C.Leaderboard.CandidateCap)
	syncUsecase := usecase.NewSyncUsecase(
		connectionRepository, syncJobRepository, jobQueue, vault, registry,
		queueCfg.DedupBucket, queueCfg.MaxAttempts)
	userUsecase := usecase.NewUserUsecase(userRepository)
	tracker := usecase.NewSyncTracker(connectionRepository, publisher)

	syncScheduler, err := scheduler.NewScheduler(syncUsecase, connectionRepository, configuration.C.Scheduler.DefaultCron)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Scheduler initialization failed")
	}
	syncUsecase.SetScheduler(syncScheduler)
	if err := syncScheduler.Bootstrap(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while bootstrapping sync schedules")
	}

	worker := queue.NewWorker(
		jobQueue, registry, statsUsecase, tracker, syncJobRepository, connectionRepository,
		queueCfg.WorkerPoolSize, queueCfg.DequeueWait, queueCfg.PromoteInterval)
	g.Go(func() error {
		worker.Run(ctx)
		return nil
	})

	userHandler := httpHandler.NewUserHandler(userUsecase)
	syncHandler := httpHandler.NewSyncHandler(syncUsecase)
	statsHandler := httpHandler.NewStatsHandler(statsUsecase, heatmapUsecase)
	leaderboardHandler := httpHandler.NewLeaderboardHandler(leaderboardUsecase)
	healthHandler := httpHandler.NewHealthHandler(db)

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.InitiateRouter(
		userHandler, syncHandler, statsHandler, leaderboardHandler, healthHandler, userRepository)

	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.GetLogger().WithField("port", app.Port).Info("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-interrupt:
			logger.GetLogger().Info("Interrupt received - shutting down")
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while shutting down HTTP server")
		}
		if err := syncScheduler.Shutdown(); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while shutting down scheduler")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application stopped")
	}
}

// initiateDatabase opens the configured relational store. Production
// deployments run on Azure SQL; everything else uses Postgres.
func initiateDatabase() (*sql.DB, error) {
	if os.Getenv("ENV") == "production" && configuration.C.Database.Mssql.Host != "" {
		return persistence.NewMSSQLDB()
	}
	return persistence.NewPostgresDb()
}
