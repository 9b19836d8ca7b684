package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/sydlexius/mintfront/internal/api"
	"github.com/sydlexius/mintfront/internal/api/middleware"
	"github.com/sydlexius/mintfront/internal/catalog"
	"github.com/sydlexius/mintfront/internal/config"
	"github.com/sydlexius/mintfront/internal/database"
	"github.com/sydlexius/mintfront/internal/event"
	"github.com/sydlexius/mintfront/internal/logging"
	"github.com/sydlexius/mintfront/internal/maintenance"
	"github.com/sydlexius/mintfront/internal/metadata"
	"github.com/sydlexius/mintfront/internal/version"
	"github.com/sydlexius/mintfront/internal/watcher"
	"github.com/sydlexius/mintfront/internal/webhook"
	"golang.org/x/net/netutil"
)

// flags holds command-line overrides. Flags win over the config file and
// environment.
type flags struct {
	configPath string
	host       string
	port       int
	debug      bool
	staticDir  string
	version    bool
}

func main() {
	f := parseFlags(os.Args[1:])
	if f.version {
		fmt.Printf("mintfront %s (%s)\n", version.Version, version.Commit)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) *flags {
	f := &flags{}
	fs := pflag.NewFlagSet("mintfront", pflag.ExitOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "path to config.yaml (env MF_CONFIG_PATH)")
	fs.StringVar(&f.host, "host", "", "listen host")
	fs.IntVarP(&f.port, "port", "p", 0, "listen port")
	fs.BoolVar(&f.debug, "debug", false, "debug mode: verbose text logging")
	fs.StringVar(&f.staticDir, "static-dir", "", "static file directory")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	_ = fs.Parse(args)

	if f.configPath == "" {
		f.configPath = os.Getenv("MF_CONFIG_PATH")
	}
	if f.configPath == "" {
		f.configPath = "config.yaml"
	}
	return f
}

// loadConfig loads the config file and environment, then applies flags.
func loadConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.host != "" {
		cfg.Server.Host = f.host
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.debug {
		cfg.Server.Debug = true
	}
	if f.staticDir != "" {
		cfg.Static.Dir = f.staticDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating flags: %w", err)
	}
	return cfg, nil
}

// webhooks converts and validates the configured webhook endpoints.
func webhooks(cfg *config.Config) ([]webhook.Webhook, error) {
	hooks := make([]webhook.Webhook, 0, len(cfg.Webhooks))
	for _, wc := range cfg.Webhooks {
		w := webhook.Webhook{Name: wc.Name, URL: wc.URL, Type: wc.Type, Events: wc.Events}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("configuring webhooks: %w", err)
		}
		hooks = append(hooks, w)
	}
	return hooks, nil
}

func logConfig(cfg *config.Config) logging.Config {
	return logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	}
}

func run(f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging via the logging Manager
	logManager, logger := logging.NewManager(logConfig(cfg))
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database ready", slog.String("path", cfg.Database.Path))

	store := metadata.NewStore(cfg.NFTDir(), cfg.Metadata.AtomicWrites)
	if err := store.EnsureDir(); err != nil {
		return err
	}

	// Event bus and catalog indexer
	eventBus := event.NewBus(logger, 256)
	catalogService := catalog.NewService(db)
	indexer := catalog.NewIndexer(catalogService, store, logger)
	indexer.Subscribe(eventBus)

	hooks, err := webhooks(cfg)
	if err != nil {
		return err
	}
	dispatcher := webhook.NewDispatcher(hooks, logger)
	if len(hooks) > 0 {
		dispatcher.Subscribe(eventBus)
		logger.Info("webhooks configured", slog.Int("count", len(hooks)))
	}

	go eventBus.Start()
	defer func() {
		eventBus.Stop()
		eventBus.Wait()
		dispatcher.Wait()
	}()

	if _, _, err := indexer.Sync(ctx); err != nil {
		logger.Warn("initial catalog sync failed", "error", err)
	}

	maintenanceService := maintenance.NewService(db, cfg.Database.Path, indexer, logger)
	if cfg.Maintenance.IntervalHours > 0 {
		go maintenanceService.StartScheduler(ctx, time.Duration(cfg.Maintenance.IntervalHours)*time.Hour)
	}

	if cfg.Watcher.Enabled {
		watcherService := watcher.NewService(store.Dir(), eventBus, logger)
		go watcherService.Start(ctx)
	}

	var uploadLimiter *middleware.RateLimiter
	if cfg.Metadata.RateLimitPerMinute > 0 {
		uploadLimiter = middleware.NewRateLimiter(ctx, cfg.Metadata.RateLimitPerMinute)
	}

	router := api.NewRouter(api.RouterDeps{
		Store:         store,
		Catalog:       catalogService,
		EventBus:      eventBus,
		Maintenance:   maintenanceService,
		UploadLimiter: uploadLimiter,
		Logger:        logger,
		BasePath:      cfg.Server.BasePath,
		PublicURL:     cfg.Server.PublicURL,
		StaticDir:     cfg.Static.Dir,
		CORSOrigins:   cfg.CORS.AllowedOrigins,
		MaxBodyBytes:  cfg.Metadata.MaxBodyBytes,
	})

	go reloadOnHangup(ctx, f, logManager, router, logger)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("base_path", cfg.Server.BasePath),
			slog.String("version", version.Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// reloadOnHangup re-reads the configuration on SIGHUP, applies the logging
// settings, and rescans static assets. Other settings need a restart.
func reloadOnHangup(ctx context.Context, f *flags, mgr *logging.Manager, router *api.Router, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := loadConfig(f)
			if err != nil {
				logger.Error("reloading config", "error", err)
				continue
			}
			lc := logConfig(cfg)
			mgr.Reconfigure(lc)
			router.RescanStatic()
			logger.Info("configuration reloaded", slog.String("logging", lc.String()))
		}
	}
}
