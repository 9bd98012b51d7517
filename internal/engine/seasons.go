// Seasonal price modulation over the simulated calendar.
package engine

// Season constants.
const (
	SeasonSpring = 0
	SeasonSummer = 1
	SeasonAutumn = 2
	SeasonWinter = 3
)

// SeasonName returns a human-readable season name.
func SeasonName(season int) string {
	switch season {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonAutumn:
		return "Autumn"
	case SeasonWinter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// Season returns which season a day counter falls in.
func (e *Engine) Season(day int) int {
	if e.cfg.DaysPerSeason <= 0 {
		return SeasonSpring
	}
	return (day / e.cfg.DaysPerSeason) % 4
}

// YearLength returns the number of days in a simulated year.
func (e *Engine) YearLength() int {
	return e.cfg.DaysPerSeason * 4
}

// SeasonalMod returns a bounded price modifier for a category on a given
// day, drawn from a smooth noise field so neighboring days move gradually.
// The modifier depends only on (category, day), never on supply, so price
// stays monotonic in supply within a day.
func (e *Engine) SeasonalMod(category, day int) float64 {
	if e.cfg.SeasonalAmplitude <= 0 || e.cfg.DaysPerSeason <= 0 {
		return 1
	}
	yearLen := e.YearLength()
	phase := float64(day%yearLen) / float64(yearLen)
	n := e.noise.Eval2(float64(category)*0.73, phase*4)
	return 1 + e.cfg.SeasonalAmplitude*(2*n-1)
}
