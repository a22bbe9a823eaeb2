package connection

import (
	"context"
	"log/slog"
	"time"
)

// Follow connects to the feed and calls handle for every message until ctx
// ends. Dropped connections are retried with exponential backoff.
func Follow(ctx context.Context, cfg FollowConfig, logger *slog.Logger, handle func(Message)) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = time.Second
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}

	wait := cfg.ReconnectBaseWait
	for {
		c := NewClient(cfg.Client, logger)
		err := c.Connect(ctx)
		if err == nil {
			wait = cfg.ReconnectBaseWait
			err = drain(ctx, c, handle)
		}
		c.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Warn("feed disconnected, reconnecting",
			"url", cfg.Client.URL,
			"err", err,
			"wait", wait,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > cfg.ReconnectMaxWait {
			wait = cfg.ReconnectMaxWait
		}
	}
}

// drain delivers messages until the connection fails or ctx ends.
func drain(ctx context.Context, c Client, handle func(Message)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-c.Errors():
			flush(c, handle)
			return err
		case msg := <-c.Messages():
			handle(msg)
		}
	}
}

// flush delivers messages already buffered when the connection failed.
func flush(c Client, handle func(Message)) {
	for {
		select {
		case msg := <-c.Messages():
			handle(msg)
		default:
			return
		}
	}
}
