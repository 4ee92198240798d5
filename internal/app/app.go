package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/marksync/marks/internal/config"
	"github.com/marksync/marks/internal/httpserver"
	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/logger"
	"github.com/marksync/marks/internal/redis"
	"github.com/marksync/marks/internal/scheduler"
	"github.com/marksync/marks/internal/sources/seed"
	redisstore "github.com/marksync/marks/internal/store/redis"
	"github.com/marksync/marks/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *redisstore.Store
	sweeper     *scheduler.Sweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient, loggerClient)
	feed := redisstore.NewFeed(redisClient, loggerClient)

	sweeper := scheduler.NewSweeper(store, loggerClient, cfg.SweepInterval)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		Store:           store,
		Feed:            feed,
		RedisClient:     redisClient,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marksd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("marksd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.importSeed(ctx); err != nil {
		return err
	}

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start index sweeper: %w", err)
	}
	a.logger.Info("index sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ marksd stopped cleanly")
	return nil
}

// importSeed loads the configured seed file, if any, before the API
// starts serving.
func (a *App) importSeed(ctx context.Context) error {
	if a.cfg.SeedFile == "" {
		return nil
	}

	a.logger.Info("importing seed bookmarks",
		logger.String("file", a.cfg.SeedFile),
		logger.String("owner", a.cfg.SeedOwner))

	entries, err := seed.NewLoader(a.cfg.SeedFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	n, err := seed.NewImporter(a.store, a.logger).Import(ctx, a.cfg.SeedOwner, entries)
	if err != nil {
		return fmt.Errorf("seed import failed: %w", err)
	}
	a.logger.Info("seed import completed", logger.Int("created", n))
	return nil
}
