package engine

import (
	"testing"

	"github.com/talgya/agora/internal/entropy"
)

func TestRandomizeBoundsSupplyAndDelta(t *testing.T) {
	eng := testEngine(t, 99)
	state := eng.GenerateBlank()

	// Exercise the clamp many times; the test config's deviations are wide
	// enough that unclamped draws would escape the bounds.
	for i := 0; i < 50; i++ {
		eng.Randomize(state, true, true)
		cfg := eng.Config()
		for _, bucket := range state.Ledger {
			for _, rec := range bucket {
				if rec.Supply < cfg.MinSupply || rec.Supply > cfg.MaxSupply {
					t.Fatalf("supply %d outside [%d, %d]", rec.Supply, cfg.MinSupply, cfg.MaxSupply)
				}
				if rec.DailyDelta < cfg.MinDelta || rec.DailyDelta > cfg.MaxDelta {
					t.Fatalf("delta %d outside [%d, %d]", rec.DailyDelta, cfg.MinDelta, cfg.MaxDelta)
				}
			}
		}
	}
}

func TestRandomizeSelectiveFields(t *testing.T) {
	eng := testEngine(t, 3)
	state := eng.GenerateBlank()
	eng.Randomize(state, true, true)

	supplies := map[string]int{}
	for _, bucket := range state.Ledger {
		for _, rec := range bucket {
			supplies[rec.ID] = rec.Supply
		}
	}

	// Season reset touches deltas only.
	eng.RandomizeForNewSeason(state)
	for _, bucket := range state.Ledger {
		for _, rec := range bucket {
			if rec.Supply != supplies[rec.ID] {
				t.Fatalf("season reset changed supply of %s", rec.ID)
			}
		}
	}
}

func TestRandomizePerCategoryCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.SupplyStdDev = 10000
	cfg.MaxSupplyByCategory = map[int]int{2: 50}
	eng := New(cfg, testCatalog(t), entropy.NewSource(5), 5)
	state := eng.GenerateBlank()

	for i := 0; i < 20; i++ {
		eng.Randomize(state, true, false)
		for _, rec := range state.Get(2) {
			if rec.Supply > 50 {
				t.Fatalf("category ceiling ignored: supply %d", rec.Supply)
			}
		}
	}
}

func TestRandomizeDeterministicAcrossSessions(t *testing.T) {
	runOnce := func() map[string][2]int {
		eng := testEngine(t, 12345)
		state := eng.GenerateBlank()
		eng.Randomize(state, true, true)
		out := map[string][2]int{}
		for _, bucket := range state.Ledger {
			for _, rec := range bucket {
				out[rec.ID] = [2]int{rec.Supply, rec.DailyDelta}
			}
		}
		return out
	}

	a, b := runOnce(), runOnce()
	if len(a) != len(b) {
		t.Fatalf("item counts differ: %d vs %d", len(a), len(b))
	}
	for id, av := range a {
		if b[id] != av {
			t.Errorf("item %s diverged: %v vs %v", id, av, b[id])
		}
	}
}
