package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/agora/internal/econ"
)

// Randomize overwrites supply and/or delta for every item reachable from
// the ledger with fresh draws. Supply draws center on the midpoint of the
// configured supply bounds, delta draws on the midpoint of the delta
// bounds; both are independent per item and per call. Draws are clamped to
// their configured bounds. Never fails.
//
// Iteration is in sorted category and item order so a session replays
// identically from its seed.
func (e *Engine) Randomize(state *econ.EconomyState, updateSupply, updateDelta bool) {
	supplyMean := e.cfg.MeanSupply()
	deltaMean := e.cfg.MeanDelta()
	for _, category := range sortedCategories(state.Ledger) {
		bucket := state.Ledger[category]
		maxSupply := e.cfg.MaxSupplyFor(category)
		for _, id := range sortedItems(bucket) {
			rec := bucket[id]
			if updateSupply {
				rec.Supply = clampInt(
					e.rng.NormalInt(supplyMean, e.cfg.SupplyStdDev),
					e.cfg.MinSupply, maxSupply)
			}
			if updateDelta {
				rec.DailyDelta = clampInt(
					e.rng.NormalInt(deltaMean, e.cfg.DeltaStdDev),
					e.cfg.MinDelta, e.cfg.MaxDelta)
			}
		}
	}
	slog.Debug("economy randomized",
		"items", state.Ledger.Count(),
		"supply", updateSupply,
		"delta", updateDelta)
}

// RandomizeForNewSeason redraws daily deltas only, leaving supply history
// intact. Called at season boundaries by the lifecycle collaborator.
func (e *Engine) RandomizeForNewSeason(state *econ.EconomyState) {
	e.Randomize(state, false, true)
}

// RandomizeForNewYear redraws both supply and deltas, resetting the economy
// for a new year.
func (e *Engine) RandomizeForNewYear(state *econ.EconomyState) {
	e.Randomize(state, true, true)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedCategories(ledger econ.CategoryLedger) []int {
	out := make([]int, 0, len(ledger))
	for category := range ledger {
		out = append(out, category)
	}
	sort.Ints(out)
	return out
}

func sortedItems(bucket map[string]*econ.ItemRecord) []string {
	out := make([]string, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
