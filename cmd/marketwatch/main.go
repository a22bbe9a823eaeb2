package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/idleclans-market/internal/api"
	"github.com/rickgao/idleclans-market/internal/config"
	"github.com/rickgao/idleclans-market/internal/items"
	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/monitor"
	"github.com/rickgao/idleclans-market/internal/poller"
	"github.com/rickgao/idleclans-market/internal/render"
	"github.com/rickgao/idleclans-market/internal/server"
	"github.com/rickgao/idleclans-market/internal/store"
	"github.com/rickgao/idleclans-market/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/marketwatch.yaml", "path to config file")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config")
	showTable := flag.Bool("table", false, "print the market table and watchlist on every update")
	sortBy := flag.String("sort", "profit", "table sort column (with -table)")
	order := flag.String("order", "desc", "table sort order (with -table)")
	bell := flag.Bool("bell", true, "ring the terminal bell on new alerts")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting marketwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	col, err := market.ParseColumn(*sortBy)
	if err != nil {
		logger.Error("invalid -sort", "error", err)
		os.Exit(1)
	}
	ord, err := market.ParseOrder(*order)
	if err != nil {
		logger.Error("invalid -order", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	st, closeStore, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("store opened", "backend", cfg.Storage.Backend)

	names, err := loadNames(cfg.Items)
	if err != nil {
		logger.Error("failed to load item catalog", "error", err)
		os.Exit(1)
	}

	hub := server.NewHub(server.DefaultHubConfig(), logger)

	opts := []monitor.Option{monitor.WithResolver(names)}
	if *bell {
		opts = append(opts, monitor.WithNotifier(render.NewBellNotifier(os.Stdout)))
	}
	mon := monitor.New(st, logger, opts...)
	mon.SetMuted(cfg.Watchlist.Muted)

	if mon.Restore(ctx) {
		logger.Info("showing cached data until the first fetch completes")
	}

	apiClient := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
		api.WithUserAgent(userAgent(cfg.API)),
	)

	p := poller.New(poller.Config{
		Interval:          cfg.Poller.Interval,
		Timeout:           cfg.API.Timeout,
		FetchOnStart:      cfg.Poller.ShouldFetchOnStart(),
		CountdownInterval: cfg.Poller.CountdownInterval,
	}, apiClient, mon, logger, poller.WithCountdown(hub.Countdown))

	_, updates := mon.Subscribe()
	go hub.Run(ctx, updates)

	if *showTable {
		_, tableUpdates := mon.Subscribe()
		go renderLoop(ctx, mon, tableUpdates, market.Query{SortBy: col, Order: ord})
	}

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	srv := server.New(mon, p, hub, logger)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	logger.Info("marketwatch running",
		"interval", cfg.Poller.Interval,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	// Wait for shutdown
	serverDone := false
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			logger.Error("http server error", "error", err)
		}
		serverDone = true
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller did not stop cleanly", "error", err)
	}

	// The server closes the hub and drains connections once ctx is done.
	if !serverDone {
		select {
		case err := <-srvErr:
			if err != nil {
				logger.Warn("http server did not stop cleanly", "error", err)
			}
		case <-shutdownCtx.Done():
			logger.Warn("timed out waiting for http server to stop")
		}
	}

	logger.Info("marketwatch stopped")
}

// loadConfig reads path, or falls back to defaults when it does not exist.
func loadConfig(path string) (*config.WatcherConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func loadNames(cfg config.ItemsConfig) (items.Resolver, error) {
	if cfg.CatalogPath == "" {
		return items.Fallback{}, nil
	}
	cat, err := items.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	slog.Info("item catalog loaded", "items", cat.Len())
	return cat, nil
}

func userAgent(cfg config.APIConfig) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}
	return version.UserAgent()
}

// renderLoop prints the table and watchlist after every update.
func renderLoop(ctx context.Context, mon *monitor.Monitor, updates <-chan monitor.Update, q market.Query) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			tbl := mon.Table(q)
			fmt.Fprintf(os.Stdout, "\nMarket data as of %s (%d items)\n", u.FetchedAt.Local().Format(time.DateTime), len(tbl.Rows))
			render.Table(os.Stdout, tbl.Rows)
			fmt.Fprintln(os.Stdout)
			render.Cards(os.Stdout, u.Cards, u.Muted)
		}
	}
}
