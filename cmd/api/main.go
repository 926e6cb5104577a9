package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lostfound-service/internal/api/http"
	"github.com/spec-kit/lostfound-service/internal/api/http/handlers"
	"github.com/spec-kit/lostfound-service/internal/auth"
	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/observability"
	"github.com/spec-kit/lostfound-service/internal/persistence"
	"github.com/spec-kit/lostfound-service/internal/repository"
	"github.com/spec-kit/lostfound-service/internal/repository/memory"
	"github.com/spec-kit/lostfound-service/internal/service"
	"github.com/spec-kit/lostfound-service/internal/storage"
	"github.com/spec-kit/lostfound-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checks []handlers.Check

	store, closeStore := openStore(ctx, cfg, logger, &checks)
	defer closeStore()

	var revocations auth.RevocationStore
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		revocations = auth.NewRedisRevocationStore(redis.Client)
		checks = append(checks, handlers.Check{Name: "redis", Probe: redis.Ping})
	} else {
		revocations = auth.NewMemoryRevocationStore()
	}

	var (
		images       storage.ImageStore
		memoryImages *storage.MemoryStore
	)
	if cfg.Minio.Enabled {
		minioStore, err := storage.NewMinioStore(ctx, cfg.Minio, logger)
		if err != nil {
			logger.Fatal("failed to init minio", zap.Error(err))
		}
		images = minioStore
		checks = append(checks, handlers.Check{Name: "minio", Probe: minioStore.HealthCheck})
	} else {
		memoryImages = storage.NewMemoryStore("/api/uploads")
		images = memoryImages
	}

	var publisher *events.AMQPPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer publisher.Close() //nolint:errcheck
		checks = append(checks, handlers.Check{Name: "rabbitmq", Probe: func(context.Context) error {
			return publisher.HealthCheck()
		}})
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          store.Users,
		PasswordResetRepo: store.PasswordResets,
		Revocations:       revocations,
		Logger:            logger,
	})
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:    store.Users,
		ItemRepo:    store.Items,
		MessageRepo: store.Messages,
		Logger:      logger,
	})
	itemService := service.NewItemService(service.ItemDependencies{
		ItemRepo:   store.Items,
		UserRepo:   store.Users,
		Images:     images,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		MessageRepo: store.Messages,
		ItemRepo:    store.Items,
		UserRepo:    store.Users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(dispatcher, store.Notifications, logger, cfg.Notification, metrics)
	statsService := service.NewStatsService(store.Items)

	worker.StartNotificationWorker(dispatcher, notificationService, publisher)

	var limiter *auth.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = auth.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger)
	}

	var uploads *handlers.UploadsHandler
	if memoryImages != nil {
		uploads = handlers.NewUploadsHandler(memoryImages)
	}

	app := httptransport.NewApp(httptransport.AppOptions{
		Name:           cfg.App.Name,
		BodyLimit:      cfg.App.BodyLimitBytes,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.Env != "production"),
		Users:          handlers.NewUsersHandler(userService),
		Items:          handlers.NewItemsHandler(itemService),
		AdminItems:     handlers.NewAdminItemsHandler(itemService),
		Contact:        handlers.NewContactHandler(contactService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Stats:          handlers.NewStatsHandler(statsService),
		Uploads:        uploads,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users, authService.Revocations(), logger),
		RateLimiter:    limiter,
		Metrics:        metrics.Handler(),
	})

	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("store", cfg.Store.Mode),
			zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// openStore returns the repositories for the configured mode and a func
// releasing them. Readiness probes for the backing store are appended to
// checks.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, checks *[]handlers.Check) (*repository.Store, func()) {
	if cfg.Store.Mode != config.StoreModePostgres {
		store := memory.NewStore()
		if cfg.Store.Seed {
			seedStore(ctx, cfg, store, logger)
		}
		logger.Info("using in-memory store", zap.Bool("seeded", cfg.Store.Seed))
		return store, func() {}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	*checks = append(*checks, handlers.Check{Name: "postgres", Probe: pg.Ping})

	store := repository.NewPostgresStore(pg.PoolHandle())
	if cfg.Store.Seed {
		users, err := store.Users.List(ctx)
		if err != nil {
			logger.Fatal("failed to inspect users", zap.Error(err))
		}
		if len(users) == 0 {
			seedStore(ctx, cfg, store, logger)
		}
	}
	return store, pg.Close
}

func seedStore(ctx context.Context, cfg *config.Config, store *repository.Store, logger *zap.Logger) {
	hash, err := auth.HashPassword(memory.SeedPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash seed password", zap.Error(err))
	}
	if err := memory.Seed(ctx, store, hash); err != nil {
		logger.Fatal("failed to seed store", zap.Error(err))
	}
	logger.Info("sample data loaded")
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
