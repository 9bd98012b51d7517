package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/talgya/agora/internal/catalog"
	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/entropy"
	"github.com/talgya/agora/internal/hooks"
	"github.com/talgya/agora/internal/mesh"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{ID: "parsnip", Name: "Parsnip", Category: 1, ListPrice: 35, DisplayGroup: "produce"},
		{ID: "berry", Name: "Berry", Category: 2, ListPrice: 100, DisplayGroup: "produce"},
	}, []int{1, 2}, nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := engine.DefaultConfig()
	cfg.SeasonalAmplitude = 0
	eng := engine.New(cfg, cat, entropy.NewSource(1), 1)
	peer := mesh.NewPeer(eng, nil, true)
	boundary := hooks.NewBoundary(peer)
	if err := boundary.OnSaveLoaded(); err != nil {
		t.Fatalf("OnSaveLoaded: %v", err)
	}
	return &Server{
		Peer:     peer,
		Boundary: boundary,
		Eng:      eng,
		Port:     0,
		AdminKey: "secret",
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.handleStatus(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["state"] != "authoritative" {
		t.Errorf("state = %v", body["state"])
	}
	if body["items"] != "2" {
		t.Errorf("items = %v", body["items"])
	}
}

func TestPricesRequiresCategory(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.handlePrices(w, httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPricesExpandsAliases(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.handlePrices(w, httptest.NewRequest(http.MethodGet, "/api/v1/prices?category=1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body []itemView
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Category 2 shares the produce display group, so both items appear.
	if len(body) != 2 {
		t.Fatalf("items = %d, want 2", len(body))
	}
	if body[0].ID != "parsnip" || body[1].ID != "berry" {
		t.Errorf("order = %s, %s", body[0].ID, body[1].ID)
	}
}

func TestPriceEndpointDefaultsToListPrice(t *testing.T) {
	s := testServer(t)
	w := httptest.NewRecorder()
	s.handlePrice(w, httptest.NewRequest(http.MethodGet, "/api/v1/price?item=parsnip", nil))

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["base_price"].(float64) != 35 {
		t.Errorf("base_price = %v", body["base_price"])
	}
}

func TestAdminAuth(t *testing.T) {
	s := testServer(t)
	handler := s.adminOnly(s.handleReset)

	// GET refused outright.
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/v1/reset", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", w.Code)
	}

	// POST without token.
	w = httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no-token status = %d", w.Code)
	}

	// POST with the right token performs the reset.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authorized status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestSupplyEndpoint(t *testing.T) {
	s := testServer(t)
	before, _ := s.Peer.Lookup("parsnip")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/supply",
		strings.NewReader(`{"item":"parsnip","amount":10}`))
	s.handleSupply(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	after, _ := s.Peer.Lookup("parsnip")
	if after.Supply == before.Supply && before.Supply < s.Eng.Config().MaxSupply {
		t.Error("supply unchanged after signal")
	}
}
