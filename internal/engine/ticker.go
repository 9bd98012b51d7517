package engine

import (
	"log/slog"
	"time"
)

// Ticker drives the simulated calendar for standalone operation, invoking
// the day/season/year lifecycle callbacks the engine itself never
// schedules. Embedded hosts call the callbacks from their own lifecycle
// events instead.
type Ticker struct {
	Day           int           // Day counter at the next boundary
	Interval      time.Duration // Real time per simulated day
	Speed         float64       // Multiplier: 1.0 = real-time, 0 = paused
	Running       bool
	DaysPerSeason int

	OnDay    func(day int)
	OnSeason func(day int) // Fires before OnDay at a season boundary
	OnYear   func(day int) // Fires before OnSeason at a year boundary
}

// NewTicker creates a day ticker starting after the given day.
func NewTicker(startDay int, interval time.Duration, daysPerSeason int) *Ticker {
	return &Ticker{
		Day:           startDay,
		Interval:      interval,
		Speed:         1.0,
		DaysPerSeason: daysPerSeason,
	}
}

// Run starts the day loop. Blocks until Stop is called.
func (t *Ticker) Run() {
	t.Running = true
	slog.Info("day ticker started", "day", t.Day, "interval", t.Interval)

	for t.Running {
		if t.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		t.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(t.Interval) / t.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("day ticker stopped", "day", t.Day)
}

// Stop halts the day loop after the current step.
func (t *Ticker) Stop() {
	t.Running = false
}

func (t *Ticker) step() {
	t.Day++

	if t.DaysPerSeason > 0 && t.Day%(t.DaysPerSeason*4) == 0 && t.OnYear != nil {
		t.OnYear(t.Day)
	}
	if t.DaysPerSeason > 0 && t.Day%t.DaysPerSeason == 0 && t.OnSeason != nil {
		t.OnSeason(t.Day)
	}
	if t.OnDay != nil {
		t.OnDay(t.Day)
	}
}
