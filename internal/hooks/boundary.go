// Package hooks is the boundary between host lifecycle events and the
// economy engine. Every entry point returns an explicit error; the Fire
// variants are the host-facing adapters that log and discard failures,
// including recovered panics, so a single failing transition never crashes
// the host process.
package hooks

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/talgya/agora/internal/mesh"
)

// Boundary wraps a peer's lifecycle entry points.
type Boundary struct {
	peer *mesh.Peer
}

// NewBoundary creates the boundary for a peer.
func NewBoundary(peer *mesh.Peer) *Boundary {
	return &Boundary{peer: peer}
}

// guard runs fn, converting a panic into an error with the stack attached
// to the log. The engine itself is panic-free; this catches faults in
// anything reached through it.
func guard(hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("lifecycle hook panicked",
				"hook", hook, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("hook %s panicked: %v", hook, r)
		}
	}()
	return fn()
}

// discard logs a hook failure and swallows it.
func discard(hook string, err error) {
	if err != nil {
		slog.Error("lifecycle hook failed", "hook", hook, "error", err)
	}
}

// OnSaveLoaded starts the session: the authority generates or reconciles
// state, a replica begins awaiting its snapshot.
func (b *Boundary) OnSaveLoaded() error {
	return guard("save_loaded", b.peer.Start)
}

// OnDayStart advances the economy one simulated day.
func (b *Boundary) OnDayStart(day int) error {
	return guard("day_start", func() error { return b.peer.DayTransition(day) })
}

// OnSeasonStart redraws daily deltas for the new season.
func (b *Boundary) OnSeasonStart(day int) error {
	return guard("season_start", func() error { return b.peer.SeasonTransition(day) })
}

// OnYearStart redraws supply and deltas for the new year.
func (b *Boundary) OnYearStart(day int) error {
	return guard("year_start", func() error { return b.peer.YearTransition(day) })
}

// OnSupplyChange reports an external produced/sold signal.
func (b *Boundary) OnSupplyChange(itemID string, amount int) error {
	return guard("supply_change", func() error { return b.peer.SupplyChange(itemID, amount) })
}

// OnFullReset is the operator recovery command.
func (b *Boundary) OnFullReset() error {
	return guard("full_reset", b.peer.FullReset)
}

// OnSessionEnd tears the session down.
func (b *Boundary) OnSessionEnd() error {
	return guard("session_end", func() error { b.peer.Shutdown(); return nil })
}

// FireDayStart is the log-and-discard adapter for tick loops.
func (b *Boundary) FireDayStart(day int) { discard("day_start", b.OnDayStart(day)) }

// FireSeasonStart is the log-and-discard adapter for tick loops.
func (b *Boundary) FireSeasonStart(day int) { discard("season_start", b.OnSeasonStart(day)) }

// FireYearStart is the log-and-discard adapter for tick loops.
func (b *Boundary) FireYearStart(day int) { discard("year_start", b.OnYearStart(day)) }
