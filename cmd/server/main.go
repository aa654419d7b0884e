package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rapidcart/catalog/internal/api"
	"github.com/rapidcart/catalog/internal/app"
	"github.com/rapidcart/catalog/internal/cache"
	"github.com/rapidcart/catalog/internal/cluster"
	"github.com/rapidcart/catalog/internal/database"
	"github.com/rapidcart/catalog/internal/events"
	"github.com/rapidcart/catalog/internal/middleware"
	"github.com/rapidcart/catalog/internal/pipeline"
	"github.com/rapidcart/catalog/internal/services"
	"github.com/rapidcart/catalog/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("catalog-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	if cfg.Cluster.Enabled && !cluster.IsWorker() {
		supervisor := cluster.NewSupervisor(
			cluster.WithWorkers(cfg.Cluster.Workers),
			cluster.WithMaxRestarts(cfg.Cluster.MaxRestarts),
		)
		err := supervisor.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg *app.Config) (err error) {
	log := logger.WithModule("bootstrap")

	db, dbErr := initialiseDatabase(cfg)
	if dbErr != nil {
		return dbErr
	}
	defer func() { err = multierr.Append(err, closeDatabase(db)) }()

	store, cleanup, storeErr := buildCacheStore(cfg, db, log)
	if storeErr != nil {
		return storeErr
	}
	defer func() { err = multierr.Append(err, cleanup()) }()

	channel := buildChannel(cfg, db, store, log)

	svc, svcErr := services.NewRecordService(db, store,
		pipeline.New(pipeline.DelayStage(cfg.Pipeline.ProcessingDelay)),
		channel,
		services.WithCacheTTL(cfg.Cache.TTL),
		services.WithEventTopic(cfg.Events.Topic),
	)
	if svcErr != nil {
		return fmt.Errorf("initialise record service: %w", svcErr)
	}

	var rateStore middleware.RateStore
	if cfg.Server.RateLimit.Enabled {
		rateStore = middleware.NewStoreRateStore(store)
	}

	router, routerErr := api.NewRouter(svc, cfg, rateStore)
	if routerErr != nil {
		return fmt.Errorf("build api router: %w", routerErr)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	listener, lnErr := cluster.Listen(ctx, addr)
	if lnErr != nil {
		return fmt.Errorf("listen on %s: %w", addr, lnErr)
	}

	server := &http.Server{Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", addr),
			zap.Int("pid", os.Getpid()),
			zap.Bool("worker", cluster.IsWorker()))
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serverErr <- serveErr
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case serveErr := <-serverErr:
		if serveErr != nil {
			return fmt.Errorf("server error: %w", serveErr)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil && !errors.Is(shutdownErr, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", shutdownErr)
	}

	if serveErr, ok := <-serverErr; ok && serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}

	log.Info("server stopped gracefully")
	return nil
}

// buildCacheStore selects the cache backend. Redis is preferred when enabled;
// if it cannot be reached at start-up the service degrades to the
// database-backed store with a periodic expiry sweep rather than failing.
func buildCacheStore(cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, func() error, error) {
	if cfg.Cache.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Username: cfg.Cache.Redis.Username,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Timeout:  cfg.Cache.Redis.Timeout,
		})
		if err == nil {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			return redisStore, redisStore.Close, nil
		}
		log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
	}

	dbStore := cache.NewDatabaseStore(db)
	sweeper := cache.NewSweeper(dbStore)
	if err := sweeper.Start(); err != nil {
		return nil, nil, fmt.Errorf("start cache sweeper: %w", err)
	}
	cleanup := func() error {
		<-sweeper.Stop().Done()
		return nil
	}
	return dbStore, cleanup, nil
}

// buildChannel wires the notification channel. Publishing rides the cache's
// Redis connection; without one (or with events disabled) creation events are
// only recorded in the local event log.
func buildChannel(cfg *app.Config, db *gorm.DB, store cache.Store, log *zap.Logger) *events.Channel {
	if !cfg.Events.Enabled {
		return events.NewChannel(events.NoopPublisher{}, db)
	}

	if redisStore, ok := store.(*cache.RedisStore); ok {
		return events.NewChannel(events.NewRedisPublisher(redisStore.Client()), db)
	}

	log.Warn("events enabled but redis not connected; events will be logged locally only")
	return events.NewChannel(events.NoopPublisher{}, db)
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Initialise(dbCfg)
	if err != nil {
		return nil, err
	}

	logger.WithModule("database").Info("database connected",
		zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
