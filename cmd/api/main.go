package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"townhall/api/internal/app"
	"townhall/api/internal/catalog"
	"townhall/api/internal/config"
	"townhall/api/internal/logging"
	"townhall/api/internal/notify"
	"townhall/api/internal/poll"
	"townhall/api/internal/search"
	"townhall/api/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("townhall api stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires every dependency and serves until ctx is done.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	opts := []app.Option{
		app.WithLogger(logger),
		app.WithTrendingLimit(cfg.TrendingLimit),
	}
	if cfg.CatalogSeed != 0 {
		opts = append(opts, app.WithLoader(catalog.NewLoader(catalog.WithSeed(cfg.CatalogSeed))))
	}

	source, db, err := catalogSource(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("catalog source unavailable: %w", err)
	}
	if db != nil {
		defer db.Close()
	}
	if pg, ok := source.(*store.PostgresCatalog); ok {
		opts = append(opts, app.WithReadinessCheck("catalog", pg.Ping))
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		publisher, err := notify.NewRedisPublisher(cfg.RedisURL, cfg.RedisChannel, logger)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer publisher.Close()
		logger.Info("publishing state changes", zap.String("channel", cfg.RedisChannel))
		opts = append(opts,
			app.WithPublisher(publisher),
			app.WithVersionSource(publisher.Version),
			app.WithReadinessCheck("redis", publisher.Ping),
		)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
	}
	searchService := search.NewService(meiliClient, logger)
	defer searchService.Close()
	opts = append(opts, app.WithSearch(searchService))

	service := app.New(poll.NewStore(), opts...)
	if source != nil {
		n, err := service.LoadCatalog(ctx, source)
		if err != nil {
			logger.Warn("catalog load failed, starting with local polls only", zap.Error(err))
		} else {
			logger.Info("catalog ready", zap.Int("polls", n))
		}
	}

	if meiliClient != nil && cfg.ReindexSchedule != "off" {
		scheduler, err := startReindexer(cfg.ReindexSchedule, service.Reindex, logger)
		if err != nil {
			return fmt.Errorf("invalid reindex schedule %q: %w", cfg.ReindexSchedule, err)
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, logger)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("townhall api listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	return nil
}

// catalogSource picks the catalog file when configured, else the catalog
// database. Both may be absent, in which case only local polls exist.
func catalogSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (catalog.Source, *sql.DB, error) {
	if path := strings.TrimSpace(cfg.CatalogFile); path != "" {
		logger.Info("using catalog file", zap.String("path", path))
		return catalog.FileSource{Path: path}, nil, nil
	}
	if strings.TrimSpace(cfg.CatalogDatabaseURL) == "" {
		logger.Info("no catalog configured")
		return nil, nil, nil
	}

	db, err := store.Open(ctx, cfg.CatalogDatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations failed: %w", err)
	}
	logger.Info("using catalog database")
	return store.NewPostgresCatalog(db), db, nil
}

// startReindexer periodically pushes every poll to the search index so that
// writes dropped while Meilisearch was unhealthy are eventually repaired.
func startReindexer(spec string, reindex func() int, logger *zap.Logger) (*cron.Cron, error) {
	cronLogger := newCronLogger(logger)
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger)))
	_, err := c.AddFunc(spec, func() {
		n := reindex()
		logger.Debug("search index resynced", zap.Int("polls", n))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("reindex scheduler started", zap.String("schedule", spec))
	return c, nil
}

// newCronLogger routes scheduler messages, recovered panics included,
// through zap.
func newCronLogger(logger *zap.Logger) cron.Logger {
	return cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
}
