// Package engine implements the economy simulation: randomized
// initialization, daily advancement, and price derivation over the
// category ledger.
package engine

// Config carries every tunable of the economy engine. It is passed
// explicitly into constructors; there is no ambient global configuration.
type Config struct {
	// Supply bounds and the standard deviation of the initial draw.
	MinSupply    int     `yaml:"min_supply"`
	MaxSupply    int     `yaml:"max_supply"`
	SupplyStdDev float64 `yaml:"supply_std_dev"`

	// Daily delta bounds and draw deviation.
	MinDelta    int     `yaml:"min_delta"`
	MaxDelta    int     `yaml:"max_delta"`
	DeltaStdDev float64 `yaml:"delta_std_dev"`

	// Price multiplier at zero supply (ceiling) and at twice the mean
	// supply or above (floor). Linear in between.
	PriceCeilMult  float64 `yaml:"price_ceil_mult"`
	PriceFloorMult float64 `yaml:"price_floor_mult"`

	// Seasonal price modulation amplitude. 0 disables modulation.
	SeasonalAmplitude float64 `yaml:"seasonal_amplitude"`
	DaysPerSeason     int     `yaml:"days_per_season"`

	// Per-category supply ceiling overrides. Categories not listed use
	// MaxSupply.
	MaxSupplyByCategory map[int]int `yaml:"max_supply_by_category"`
}

// DefaultConfig returns the tuning used when no config file overrides it.
func DefaultConfig() Config {
	return Config{
		MinSupply:         0,
		MaxSupply:         1000,
		SupplyStdDev:      160,
		MinDelta:          -30,
		MaxDelta:          30,
		DeltaStdDev:       12,
		PriceCeilMult:     1.3,
		PriceFloorMult:    0.7,
		SeasonalAmplitude: 0.05,
		DaysPerSeason:     28,
	}
}

// MaxSupplyFor returns the supply ceiling for a category.
func (c Config) MaxSupplyFor(category int) int {
	if max, ok := c.MaxSupplyByCategory[category]; ok {
		return max
	}
	return c.MaxSupply
}

// MeanSupply is the midpoint of the configured supply bounds, used both as
// the randomization mean and as the pricing pivot.
func (c Config) MeanSupply() float64 {
	return float64(c.MinSupply+c.MaxSupply) / 2
}

// MeanDelta is the midpoint of the configured delta bounds.
func (c Config) MeanDelta() float64 {
	return float64(c.MinDelta+c.MaxDelta) / 2
}
