// Package api serves the economy observation surface over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (operator control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/hooks"
	"github.com/talgya/agora/internal/mesh"
	"github.com/talgya/agora/internal/persistence"
)

// Server serves economy state over HTTP and hosts the mesh websocket
// endpoint on the authority.
type Server struct {
	Peer     *mesh.Peer
	Boundary *hooks.Boundary
	Eng      *engine.Engine
	DB       *persistence.DB // nil on replicas
	Hub      *mesh.Hub       // nil on replicas
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	resetLimiter := NewRateLimiter(5, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/items", s.handleItems)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/price", s.handlePrice)

	// Operator endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reset", s.adminOnly(RateLimitMiddleware(resetLimiter, s.handleReset)))
	mux.HandleFunc("/api/v1/supply", s.adminOnly(s.handleSupply))

	// Mesh transport for replicas (authority only).
	if s.Hub != nil {
		mux.HandleFunc("/ws/mesh", s.Hub.HandleWS)
	}

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "mesh", s.Hub != nil)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "operator endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	day := s.Peer.Day()
	status := map[string]any{
		"peer":           s.Peer.ID,
		"state":          mesh.StateName(s.Peer.State()),
		"authority":      s.Peer.IsAuthority(),
		"day":            day,
		"season":         engine.SeasonName(s.Eng.Season(day)),
		"version":        s.Peer.Version(),
		"items":          humanize.Comma(int64(s.Peer.ItemCount())),
		"dropped_deltas": s.Peer.DroppedDeltas(),
	}
	if s.Hub != nil {
		status["replicas"] = s.Hub.Replicas()
	}
	if s.DB != nil {
		if n, err := s.DB.ArchiveCount(mesh.ModelKey); err == nil {
			status["archived_snapshots"] = n
		}
	}
	writeJSON(w, http.StatusOK, status)
}

type itemView struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Category   int    `json:"category"`
	Supply     int    `json:"supply"`
	DailyDelta int    `json:"daily_delta"`
	ListPrice  int    `json:"list_price"`
	SalePrice  int    `json:"sale_price"`
}

func (s *Server) itemView(id string, category int) itemView {
	v := itemView{ID: id, Category: category}
	if rec, ok := s.Peer.Lookup(id); ok {
		v.Supply = rec.Supply
		v.DailyDelta = rec.DailyDelta
	}
	if entry, ok := s.Eng.Catalog().Find(id); ok {
		v.Name = entry.Name
		v.ListPrice = entry.ListPrice
		v.SalePrice = s.Peer.Price(id, entry.ListPrice)
	}
	return v
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	var out []itemView
	for _, entry := range s.Eng.Catalog().Tradable() {
		out = append(out, s.itemView(entry.ID, entry.Category))
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePrices lists a category expanded with its display aliases, with
// list price versus derived price for auditing.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, "category query parameter required", http.StatusBadRequest)
		return
	}
	var out []itemView
	for _, rec := range s.Peer.GetExpanded(category) {
		cat := category
		if c, ok := s.Eng.Catalog().Find(rec.ID); ok {
			cat = c.Category
		}
		out = append(out, s.itemView(rec.ID, cat))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item")
	if itemID == "" {
		http.Error(w, "item query parameter required", http.StatusBadRequest)
		return
	}
	base := 0
	if raw := r.URL.Query().Get("base"); raw != "" {
		var err error
		if base, err = strconv.Atoi(raw); err != nil {
			http.Error(w, "invalid base price", http.StatusBadRequest)
			return
		}
	} else if entry, ok := s.Eng.Catalog().Find(itemID); ok {
		base = entry.ListPrice
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":       itemID,
		"base_price": base,
		"sale_price": s.Peer.Price(itemID, base),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Boundary.OnFullReset(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reset":   true,
		"day":     s.Peer.Day(),
		"version": s.Peer.Version(),
	})
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item   string `json:"item"`
		Amount int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Item == "" {
		http.Error(w, "body must be {\"item\": ..., \"amount\": ...}", http.StatusBadRequest)
		return
	}
	if err := s.Boundary.OnSupplyChange(req.Item, req.Amount); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	rec, _ := s.Peer.Lookup(req.Item)
	writeJSON(w, http.StatusOK, map[string]any{
		"item":    req.Item,
		"supply":  rec.Supply,
		"version": s.Peer.Version(),
	})
}
