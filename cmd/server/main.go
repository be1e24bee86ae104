package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"cabbook/internal/app"
	"cabbook/internal/auth"
	"cabbook/internal/config"
	"cabbook/internal/handler"
	"cabbook/internal/integration/blobstore"
	"cabbook/internal/integration/maps"
	"cabbook/internal/integration/whatsapp"
	"cabbook/internal/logger"
	internalRedis "cabbook/internal/redis"
	"cabbook/internal/repository/postgres"
	"cabbook/internal/service"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.Logger.Level)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", logger.Error(err))
		os.Exit(1)
	}
	if cfg.Auth.UsesDefaultSecret() {
		log.Warning("TOKEN_SECRET is not set, bearer tokens are signed with the public default secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic comes first so the database and Redis clients can be instrumented.
	var (
		nrApp *newrelic.Application
		err   error
	)
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warning("failed to initialize new relic", logger.Error(err))
		} else {
			log.Info("new relic enabled", logger.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to postgres", logger.String("host", cfg.Database.Host), logger.String("db", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := app.RunMigrations(db, log); err != nil {
			log.Error("failed to run migrations", logger.Error(err))
			os.Exit(1)
		}
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp, log)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	server, err := wireServer(db, redisClient, nrApp, cfg, log)
	if err != nil {
		log.Error("failed to wire server", logger.Error(err))
		os.Exit(1)
	}

	go func() {
		log.Info("starting server", logger.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log logger.ILogger) (*http.Server, error) {
	cacheStore := internalRedis.NewCacheStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	userRepo := postgres.NewUserRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	docRepo := postgres.NewCarDocumentRepository(db)

	// Optional integrations stay nil interfaces when unconfigured so the
	// services report them as disabled.
	var blobStore service.BlobStore
	if cfg.Azure.StorageConnectionString != "" {
		client, err := blobstore.NewClient(cfg.Azure.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		blobStore = client
	} else {
		log.Warning("azure blob storage not configured, uploads disabled")
	}

	var sender service.MessageSender
	if cfg.Azure.WhatsAppConnectionString != "" {
		client, err := whatsapp.NewClient(cfg.Azure.WhatsAppConnectionString, cfg.Azure.WhatsAppChannelID)
		if err != nil {
			return nil, err
		}
		sender = client
	} else {
		log.Warning("whatsapp not configured, verification codes will not be delivered")
	}

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	notificationService := service.NewNotificationService(sender, cfg.Azure.WhatsAppTemplate, log.With(logger.String("component", "notification")))
	tripService := service.NewTripService(tripRepo, log.With(logger.String("component", "trip")))
	userService := service.NewUserService(userRepo, docRepo, cacheStore, lockStore, notificationService, tokens, log.With(logger.String("component", "user")))
	reviewService := service.NewReviewService(reviewRepo, userRepo, log.With(logger.String("component", "review")))
	docService := service.NewCarDocumentService(docRepo, log.With(logger.String("component", "car_document")))
	blobService := service.NewBlobService(blobStore, log.With(logger.String("component", "blob")))

	mapsClient := maps.NewClient(cfg.Google.BaseURL, cfg.Google.PlacesAPIKey)

	router := app.NewRouter(app.RouterDeps{
		TripHandler:        handler.NewTripHandler(tripService, log),
		UserHandler:        handler.NewUserHandler(userService, log),
		ReviewHandler:      handler.NewReviewHandler(reviewService, log),
		CarDocumentHandler: handler.NewCarDocumentHandler(docService, log),
		BlobHandler:        handler.NewBlobHandler(blobService, log),
		MapsHandler:        handler.NewMapsHandler(mapsClient, log),
		RedisClient:        redisClient,
		NewRelicApp:        nrApp,
		Tokens:             tokens,
		AuthRequired:       cfg.Auth.Required,
		Log:                log,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
