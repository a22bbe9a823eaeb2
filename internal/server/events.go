package server

import (
	"encoding/json"
	"time"
)

// Event types pushed over the WebSocket feed.
const (
	EventUpdate    = "update"
	EventCountdown = "countdown"
	EventSound     = "sound"
)

// Event is one message on the feed.
type Event struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// CountdownData is the payload of a countdown event.
type CountdownData struct {
	Seconds int `json:"seconds"`
}

// SoundData is the payload of a sound event.
type SoundData struct {
	ItemIDs []int    `json:"itemIds"`
	Names   []string `json:"names"`
}

func newEvent(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: typ, Time: time.Now().UTC(), Data: raw})
}
