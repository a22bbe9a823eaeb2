// Command pricetable prints the Idle Clans market table once, or follows a
// running marketwatch daemon.
package main

import (
	"context"
	"encoding/json"
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
	"github.com/rickgao/idleclans-market/internal/connection"
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
	sortBy := flag.String("sort", "itemId", "sort column: itemId, name, highestBuyPrice, lowestSellPrice, highestPriceVolume, lowestPriceVolume, profit")
	order := flag.String("order", "asc", "sort order: asc or desc")
	search := flag.String("search", "", "move items whose name contains this to the top")
	cached := flag.Bool("cached", false, "use the stored snapshot instead of fetching")
	pin := flag.Int("pin", 0, "pin an item ID to the watchlist")
	unpin := flag.Int("unpin", 0, "remove an item ID from the watchlist")
	offer := flag.String("offer", "", "custom buy offer for the -pin item")
	follow := flag.String("follow", "", "follow a daemon feed, e.g. ws://localhost:8080/ws")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Log to stderr so the table stays clean on stdout.
	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *follow != "" {
		if err := followFeed(ctx, *follow, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("follow failed", "error", err)
			os.Exit(1)
		}
		return
	}

	q, err := parseQuery(*sortBy, *order, *search)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, logger, q, *cached, *pin, *unpin, *offer); err != nil {
		logger.Error("pricetable failed", "error", err)
		os.Exit(1)
	}
}

func parseQuery(sortBy, order, search string) (market.Query, error) {
	col, err := market.ParseColumn(sortBy)
	if err != nil {
		return market.Query{}, err
	}
	ord, err := market.ParseOrder(order)
	if err != nil {
		return market.Query{}, err
	}
	return market.Query{SortBy: col, Order: ord, Search: search}, nil
}

func run(ctx context.Context, cfg *config.WatcherConfig, logger *slog.Logger, q market.Query, cached bool, pin, unpin int, offer string) error {
	st, closeStore, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	var names items.Resolver = items.Fallback{}
	if cfg.Items.CatalogPath != "" {
		cat, err := items.LoadCatalog(cfg.Items.CatalogPath)
		if err != nil {
			return err
		}
		names = cat
	}

	mon := monitor.New(st, logger,
		monitor.WithResolver(names),
		monitor.WithNotifier(render.NewBellNotifier(os.Stdout)),
	)
	mon.SetMuted(cfg.Watchlist.Muted)
	mon.Restore(ctx)

	if !cached {
		client := api.NewClient(cfg.API.BaseURL,
			api.WithLogger(logger),
			api.WithTimeout(cfg.API.Timeout),
			api.WithRetries(cfg.API.MaxRetries, time.Second),
			api.WithUserAgent(version.UserAgent()),
		)
		p := poller.New(poller.Config{Timeout: cfg.API.Timeout}, client, mon, logger)
		if _, err := p.Refresh(ctx); err != nil {
			// The stored snapshot is still shown.
			logger.Warn("fetch failed, showing cached data", "error", err)
		}
	}

	if unpin > 0 {
		if err := mon.Unpin(ctx, unpin); err != nil {
			return err
		}
	}
	if pin > 0 {
		if err := mon.Pin(ctx, pin); err != nil {
			fmt.Fprintf(os.Stderr, "cannot pin %d: %v\n", pin, err)
		} else if offer != "" {
			if err := mon.SetOffer(ctx, pin, offer); err != nil {
				return err
			}
		}
	}

	snap := mon.Snapshot()
	if snap.IsEmpty() {
		return errors.New("no market data available")
	}

	tbl := mon.Table(q)
	if tbl.Notice != "" {
		fmt.Fprintln(os.Stderr, tbl.Notice)
	} else if q.Search != "" {
		fmt.Fprintf(os.Stderr, "%d matches\n", tbl.Matches)
	}

	fmt.Printf("Market data as of %s\n", snap.FetchedAt.Local().Format(time.DateTime))
	if err := render.Table(os.Stdout, tbl.Rows); err != nil {
		return err
	}
	fmt.Println()
	cur := mon.Current()
	return render.Cards(os.Stdout, cur.Cards, cur.Muted)
}

// followFeed prints daemon events until ctx ends.
func followFeed(ctx context.Context, url string, logger *slog.Logger) error {
	bell := render.NewBellNotifier(os.Stdout)

	return connection.Follow(ctx, connection.DefaultFollowConfig(url), logger, func(m connection.Message) {
		switch m.Type {
		case server.EventUpdate:
			var u monitor.Update
			if err := json.Unmarshal(m.Data, &u); err != nil {
				logger.Warn("bad update event", "error", err)
				return
			}
			fmt.Printf("\nUpdate %s: %d items\n", u.FetchedAt.Local().Format(time.DateTime), u.Records)
			render.Cards(os.Stdout, u.Cards, u.Muted)

		case server.EventCountdown:
			var cd server.CountdownData
			if err := json.Unmarshal(m.Data, &cd); err == nil && cd.Seconds%10 == 0 {
				render.Countdown(os.Stdout, time.Duration(cd.Seconds)*time.Second)
			}

		case server.EventSound:
			var sd server.SoundData
			if err := json.Unmarshal(m.Data, &sd); err != nil {
				return
			}
			cards := make([]monitor.Card, len(sd.ItemIDs))
			for i, id := range sd.ItemIDs {
				cards[i] = monitor.Card{ItemID: id}
				if i < len(sd.Names) {
					cards[i].Name = sd.Names[i]
				}
			}
			bell.Notify(ctx, cards)
		}
	})
}
