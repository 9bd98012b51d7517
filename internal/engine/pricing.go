package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/agora/internal/catalog"
	"github.com/talgya/agora/internal/econ"
)

// Price derives the sale price of an item from its base price and current
// supply. Artisan goods are priced relative to their base ingredient. A nil
// state and an unknown item both degrade to the base price; neither is an
// error for the caller. Pure over current state.
func (e *Engine) Price(state *econ.EconomyState, itemID string, basePrice int) int {
	if state == nil {
		slog.Error("price requested before economy state ready", "item", itemID)
		return basePrice
	}
	if entry, ok := e.cat.Find(itemID); ok && entry.Kind == catalog.KindArtisan {
		if p, ok := e.artisanPrice(state, entry, basePrice); ok {
			return p
		}
	}
	return e.supplyPrice(state, itemID, basePrice)
}

// artisanPrice prices a composite good as the ingredient's derived price
// scaled by the ratio of the composite's base price to the ingredient's
// list price. Falls through to the item's own curve when no ingredient is
// resolvable or its list price is below 1.
func (e *Engine) artisanPrice(state *econ.EconomyState, entry *catalog.Entry, basePrice int) (int, bool) {
	if entry.Ingredient == "" {
		return 0, false
	}
	ing, ok := e.cat.Find(entry.Ingredient)
	if !ok || ing.ListPrice < 1 {
		slog.Debug("artisan ingredient unresolvable, pricing off own curve",
			"item", entry.ID, "ingredient", entry.Ingredient)
		return 0, false
	}
	// Recursion bottoms out here: catalog validation guarantees an
	// ingredient is never itself artisan.
	ingredientPrice := e.Price(state, ing.ID, ing.ListPrice)
	modifier := float64(basePrice) / float64(ing.ListPrice)
	return int(math.Floor(float64(ingredientPrice) * modifier)), true
}

func (e *Engine) supplyPrice(state *econ.EconomyState, itemID string, basePrice int) int {
	rec, ok := state.Lookup(itemID)
	if !ok {
		slog.Debug("no economic record, using base price", "item", itemID)
		return basePrice
	}
	mult := e.supplyMultiplier(rec.Supply)
	season := 1.0
	if category, ok := state.Category(itemID); ok {
		season = e.SeasonalMod(category, state.Day)
	}
	price := int(math.Floor(float64(basePrice) * mult * season))
	if price < 0 {
		price = 0
	}
	slog.Debug("price derived",
		"item", itemID, "base", basePrice, "price", price, "supply", rec.Supply)
	return price
}

// supplyMultiplier interpolates linearly between the ceiling multiplier at
// zero supply and the floor multiplier at twice the mean supply. Higher
// supply never raises the multiplier.
func (e *Engine) supplyMultiplier(supply int) float64 {
	mean := e.cfg.MeanSupply()
	if mean <= 0 {
		return 1
	}
	ratio := float64(supply) / (2 * mean)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return e.cfg.PriceCeilMult + (e.cfg.PriceFloorMult-e.cfg.PriceCeilMult)*ratio
}
