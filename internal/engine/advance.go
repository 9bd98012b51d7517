package engine

import (
	"log/slog"

	"github.com/talgya/agora/internal/econ"
)

// AdvanceOneDay applies each item's daily delta to its supply, clamped to
// the configured floor and per-category ceiling. The caller guarantees
// at-most-once-per-simulated-day invocation; calling it again always means
// a new day. Only the authority peer may invoke this.
func (e *Engine) AdvanceOneDay(state *econ.EconomyState) {
	for category, bucket := range state.Ledger {
		maxSupply := e.cfg.MaxSupplyFor(category)
		for _, rec := range bucket {
			rec.Supply += rec.DailyDelta
			rec.Clamp(e.cfg.MinSupply, maxSupply)
		}
	}
	slog.Debug("economy advanced one day", "items", state.Ledger.Count())
}
