package connection

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Message is one event from the feed.
type Message struct {
	Type       string          `json:"type"` // "update", "countdown", "sound"
	Time       time.Time       `json:"time"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"-"` // Local timestamp when ReadMessage returned
}

// ClientConfig configures a feed client.
type ClientConfig struct {
	URL          string        // Feed URL (e.g., ws://localhost:8080/ws)
	PingInterval time.Duration // How often to ping the daemon
	PingTimeout  time.Duration // Max time without ping or pong before the connection is stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 30 * time.Second,
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   64,
	}
}

// FollowConfig configures reconnection.
type FollowConfig struct {
	Client            ClientConfig
	ReconnectBaseWait time.Duration // First wait after a dropped connection
	ReconnectMaxWait  time.Duration // Backoff cap
}

// DefaultFollowConfig returns sensible defaults.
func DefaultFollowConfig(url string) FollowConfig {
	cc := DefaultClientConfig()
	cc.URL = url
	return FollowConfig{
		Client:            cc,
		ReconnectBaseWait: time.Second,
		ReconnectMaxWait:  30 * time.Second,
	}
}
