// Package econ holds per-item economic state: supply levels, daily drift,
// and the category ledger that groups item records.
package econ

// ItemRecord tracks the economic state of a single tradable item.
// Supply depresses price; DailyDelta is applied once per simulated day.
type ItemRecord struct {
	ID         string `json:"id" db:"item_id"`
	Supply     int    `json:"supply" db:"supply"`
	DailyDelta int    `json:"daily_delta" db:"daily_delta"`
}

// Clamp bounds the record's supply to [floor, ceiling].
func (r *ItemRecord) Clamp(floor, ceiling int) {
	if r.Supply < floor {
		r.Supply = floor
	}
	if r.Supply > ceiling {
		r.Supply = ceiling
	}
}
