package engine

import (
	"log/slog"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/agora/internal/catalog"
	"github.com/talgya/agora/internal/econ"
	"github.com/talgya/agora/internal/entropy"
)

// Engine evolves an EconomyState: it randomizes, advances, and prices.
// It never owns the state; callers (the authority peer) pass it in.
type Engine struct {
	cfg   Config
	cat   *catalog.Catalog
	rng   *entropy.Source
	noise opensimplex.Noise
}

// New creates an engine for one simulation session. The seed feeds the
// seasonal noise field; the entropy source carries its own seed.
func New(cfg Config, cat *catalog.Catalog, rng *entropy.Source, seed int64) *Engine {
	return &Engine{
		cfg:   cfg,
		cat:   cat,
		rng:   rng,
		noise: opensimplex.NewNormalized(seed),
	}
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config { return e.cfg }

// Catalog returns the host catalog the engine was built from.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// GenerateBlank builds an un-randomized state with one zeroed record per
// tradable catalog entry, plus the category alias map.
func (e *Engine) GenerateBlank() *econ.EconomyState {
	state := econ.NewState(e.cat.AliasMap())
	for _, entry := range e.cat.Tradable() {
		state.Ledger.Put(entry.Category, &econ.ItemRecord{ID: entry.ID})
	}
	state.Reindex()
	return state
}

// Reconcile decides between a persisted state and a freshly generated one.
// If the item-id sets match exactly, the persisted state is kept, which
// preserves supply history across sessions. Any drift means the catalog
// changed, so the persisted state is discarded wholesale and the fresh
// state is fully randomized. Partial carry-over is deliberately not
// attempted.
func (e *Engine) Reconcile(persisted, fresh *econ.EconomyState) *econ.EconomyState {
	if persisted != nil && sameIDSet(persisted.Ledger.ItemIDs(), fresh.Ledger.ItemIDs()) {
		persisted.Aliases = fresh.Aliases
		persisted.Reindex()
		slog.Info("economy restored from persisted state",
			"items", persisted.Ledger.Count(), "day", persisted.Day)
		return persisted
	}
	if persisted != nil {
		slog.Warn("catalog drift, regenerating economy",
			"persisted_items", persisted.Ledger.Count(),
			"catalog_items", fresh.Ledger.Count())
	}
	e.Randomize(fresh, true, true)
	return fresh
}

func sameIDSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
