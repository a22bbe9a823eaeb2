package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/idleclans-market/internal/market"
	"github.com/rickgao/idleclans-market/internal/monitor"
	"github.com/rickgao/idleclans-market/internal/poller"
	"github.com/rickgao/idleclans-market/internal/version"
	"github.com/rickgao/idleclans-market/internal/watchlist"
)

const defaultSuggestLimit = 10

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status    string        `json:"status"`
	Version   version.Info  `json:"version"`
	Uptime    string        `json:"uptime"`
	Records   int           `json:"records"`
	FetchedAt *time.Time    `json:"fetchedAt,omitempty"`
	Poller    *poller.Stats `json:"poller,omitempty"`
	Clients   int           `json:"clients"`
}

type watchlistResponse struct {
	Cards []monitor.Card `json:"cards"`
	Muted bool           `json:"muted"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cur := s.mon.Current()
	health := healthResponse{
		Status:  "healthy",
		Version: version.Get(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Records: cur.Records,
		Clients: s.hub.Count(),
	}
	if !cur.FetchedAt.IsZero() {
		health.FetchedAt = &cur.FetchedAt
	}
	if s.refresher != nil {
		stats := s.refresher.Stats()
		health.Poller = &stats
	}
	if cur.Records == 0 {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	col, err := market.ParseColumn(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sort column", err)
		return
	}
	order, err := market.ParseOrder(q.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sort order", err)
		return
	}

	writeJSON(w, http.StatusOK, s.mon.Table(market.Query{
		SortBy: col,
		Order:  order,
		Search: q.Get("search"),
	}))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	suggestions := s.mon.Suggest(r.URL.Query().Get("q"), limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	cur := s.mon.Current()
	writeJSON(w, http.StatusOK, watchlistResponse{Cards: cur.Cards, Muted: cur.Muted})
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := s.mon.Pin(r.Context(), id); err != nil {
		writeWatchlistError(w, err)
		return
	}
	s.writeWatchlist(w)
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	if err := s.mon.Unpin(r.Context(), id); err != nil {
		writeWatchlistError(w, err)
		return
	}
	s.writeWatchlist(w)
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var body struct {
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	// Accept both 12.5 and "12.5"; anything unparsable becomes 0.
	raw := strings.Trim(string(body.Offer), `"`)
	if err := s.mon.SetOffer(r.Context(), id, raw); err != nil {
		writeWatchlistError(w, err)
		return
	}
	s.writeWatchlist(w)
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("muted"); raw != "" {
		muted, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid muted value", err)
			return
		}
		s.mon.SetMuted(muted)
	} else {
		s.mon.ToggleMute()
	}
	s.writeWatchlist(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "poller not running", nil)
		return
	}
	queued := s.refresher.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	initial, err := newEvent(EventUpdate, s.mon.Current())
	if err != nil {
		s.logger.Error("failed to encode initial update", "err", err)
		initial = nil
	}
	s.hub.serve(w, r, initial)
}

func (s *Server) writeWatchlist(w http.ResponseWriter) {
	cur := s.mon.Current()
	writeJSON(w, http.StatusOK, watchlistResponse{Cards: cur.Cards, Muted: cur.Muted})
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id", err)
		return 0, false
	}
	return id, true
}

func writeWatchlistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watchlist.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "watchlist is full", err)
	case errors.Is(err, watchlist.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "watchlist update failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
