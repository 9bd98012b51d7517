// Package mesh implements the authority and replication protocol: one peer
// owns the canonical economy state and pushes snapshots and incremental
// deltas to replicas over the messaging transport.
package mesh

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/agora/internal/econ"
	"github.com/talgya/agora/internal/engine"
	"github.com/talgya/agora/internal/protocol"
)

// ModelKey is the fixed persistence key for the canonical economy state.
const ModelKey = "agora.economy"

// State is a peer's position in the protocol state machine.
type State int

const (
	StateUninitialized State = iota
	StateGenerating
	StateAwaitingSnapshot
	StateAuthoritative
	StateReplica
)

// StateName returns a human-readable protocol state.
func StateName(s State) string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateGenerating:
		return "generating"
	case StateAwaitingSnapshot:
		return "awaiting_snapshot"
	case StateAuthoritative:
		return "authoritative"
	case StateReplica:
		return "replica"
	default:
		return "unknown"
	}
}

// Broadcaster delivers a message to every connected replica. Broadcasts are
// fire-and-forget; delivery failures are the transport's concern.
type Broadcaster interface {
	Broadcast(data []byte)
}

// Store persists the canonical state. Only the authority peer writes.
type Store interface {
	SaveState(key string, state *econ.EconomyState) error
	LoadState(key string) (*econ.EconomyState, error)
	Archive(key string, state *econ.EconomyState) error
}

// Peer is one participant in the economy mesh. Whether it is the authority
// is decided once, at construction, by the injected flag.
type Peer struct {
	ID          string
	isAuthority bool

	eng   *engine.Engine
	store Store
	bcast Broadcaster

	mu    sync.Mutex
	state State
	econ  *econ.EconomyState

	droppedDeltas uint64
}

// NewPeer creates a peer. store may be nil on replicas; they never persist.
func NewPeer(eng *engine.Engine, store Store, isAuthority bool) *Peer {
	return &Peer{
		ID:          uuid.NewString(),
		isAuthority: isAuthority,
		eng:         eng,
		store:       store,
		state:       StateUninitialized,
	}
}

// AttachBroadcaster wires the outbound transport. Called once during setup,
// before Start.
func (p *Peer) AttachBroadcaster(b Broadcaster) {
	p.bcast = b
}

// Start runs the session-start transition. The authority generates or
// reconciles its state; a replica waits for a snapshot and degrades to
// host-default pricing in the meantime.
func (p *Peer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isAuthority {
		p.state = StateAwaitingSnapshot
		slog.Info("peer awaiting snapshot", "peer", p.ID)
		return nil
	}

	p.state = StateGenerating
	var persisted *econ.EconomyState
	if p.store != nil {
		loaded, err := p.store.LoadState(ModelKey)
		if err != nil {
			return fmt.Errorf("load persisted economy: %w", err)
		}
		persisted = loaded
	}
	p.econ = p.eng.Reconcile(persisted, p.eng.GenerateBlank())
	p.state = StateAuthoritative
	slog.Info("peer authoritative",
		"peer", p.ID, "items", p.econ.Ledger.Count(), "day", p.econ.Day)
	return p.saveLocked(false)
}

// IsAuthority reports whether this peer owns the canonical state.
func (p *Peer) IsAuthority() bool { return p.isAuthority }

// State returns the peer's protocol state.
func (p *Peer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Day returns the current simulated day, 0 before any state exists.
func (p *Peer) Day() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.econ == nil {
		return 0
	}
	return p.econ.Day
}

// Version returns the current state version, 0 before any state exists.
func (p *Peer) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.econ == nil {
		return 0
	}
	return p.econ.Version
}

// ItemCount returns the number of tracked items.
func (p *Peer) ItemCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.econ == nil {
		return 0
	}
	return p.econ.Ledger.Count()
}

// Price derives an item's sale price. Degrades to basePrice while no state
// is loaded, which is how a replica behaves until its first snapshot.
func (p *Peer) Price(itemID string, basePrice int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eng.Price(p.econ, itemID, basePrice)
}

// GetExpanded returns a category's records merged with its aliases.
func (p *Peer) GetExpanded(category int) []*econ.ItemRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.econ == nil {
		return nil
	}
	return p.econ.GetExpanded(category)
}

// Lookup returns a copy of an item's record.
func (p *Peer) Lookup(itemID string) (econ.ItemRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.econ == nil {
		return econ.ItemRecord{}, false
	}
	rec, ok := p.econ.Lookup(itemID)
	if !ok {
		return econ.ItemRecord{}, false
	}
	return *rec, true
}

// DayTransition advances the economy one day, republishes, and persists.
// Authority only; the lifecycle collaborator guarantees at-most-once per
// simulated day.
func (p *Peer) DayTransition(day int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthoritative {
		return fmt.Errorf("day transition on non-authoritative peer (%s)", StateName(p.state))
	}
	p.eng.AdvanceOneDay(p.econ)
	p.econ.Day = day
	p.econ.Version++
	p.broadcastSnapshotLocked()
	return p.saveLocked(true)
}

// SeasonTransition redraws daily deltas for a new season, republishes, and
// persists. Authority only.
func (p *Peer) SeasonTransition(day int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthoritative {
		return fmt.Errorf("season transition on non-authoritative peer (%s)", StateName(p.state))
	}
	slog.Info("season transition", "day", day, "season", engine.SeasonName(p.eng.Season(day)))
	p.eng.RandomizeForNewSeason(p.econ)
	p.econ.Version++
	p.broadcastSnapshotLocked()
	return p.saveLocked(false)
}

// YearTransition redraws both supply and deltas for a new year. Authority
// only.
func (p *Peer) YearTransition(day int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthoritative {
		return fmt.Errorf("year transition on non-authoritative peer (%s)", StateName(p.state))
	}
	slog.Info("year transition", "day", day)
	p.eng.RandomizeForNewYear(p.econ)
	p.econ.Version++
	p.broadcastSnapshotLocked()
	return p.saveLocked(false)
}

// SupplyChange applies an external produced/sold signal: mutate locally,
// persist, then broadcast an incremental delta so replicas converge without
// waiting for the next snapshot. Authority only.
func (p *Peer) SupplyChange(itemID string, amount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthoritative {
		return fmt.Errorf("supply change on non-authoritative peer (%s)", StateName(p.state))
	}
	cfg := p.eng.Config()
	category, _ := p.econ.Category(itemID)
	if !p.econ.AdjustSupply(itemID, amount, cfg.MinSupply, cfg.MaxSupplyFor(category)) {
		slog.Debug("supply change for untracked item ignored", "item", itemID)
		return nil
	}
	p.econ.Version++
	if err := p.saveLocked(false); err != nil {
		return err
	}
	p.broadcastLocked(protocol.NewSupplyDelta(p.econ.Version, itemID, amount))
	return nil
}

// FullReset is the operator recovery command: randomize for a new year,
// then advance one day. Authority only.
func (p *Peer) FullReset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAuthoritative {
		return fmt.Errorf("full reset on non-authoritative peer (%s)", StateName(p.state))
	}
	slog.Warn("operator full reset", "day", p.econ.Day)
	p.eng.RandomizeForNewYear(p.econ)
	p.eng.AdvanceOneDay(p.econ)
	p.econ.Version++
	p.broadcastSnapshotLocked()
	return p.saveLocked(true)
}

// Shutdown tears the session down. No partial state survives; a new
// session starts from Start again.
func (p *Peer) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.econ = nil
	p.state = StateUninitialized
	slog.Info("peer session ended", "peer", p.ID)
}

// SnapshotMessage encodes the current state for the wire. Used by the hub
// to answer snapshot requests and by broadcastSnapshotLocked.
func (p *Peer) SnapshotMessage() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotMessageLocked()
}

func (p *Peer) snapshotMessageLocked() ([]byte, error) {
	if p.econ == nil {
		return nil, fmt.Errorf("no economy state to snapshot")
	}
	msg, err := protocol.EncodeSnapshot(p.econ)
	if err != nil {
		return nil, err
	}
	return protocol.Marshal(msg)
}

func (p *Peer) broadcastSnapshotLocked() {
	if p.bcast == nil {
		return
	}
	data, err := p.snapshotMessageLocked()
	if err != nil {
		slog.Error("snapshot encode failed", "error", err)
		return
	}
	p.bcast.Broadcast(data)
}

func (p *Peer) broadcastLocked(msg any) {
	if p.bcast == nil {
		return
	}
	data, err := protocol.Marshal(msg)
	if err != nil {
		slog.Error("message encode failed", "error", err)
		return
	}
	p.bcast.Broadcast(data)
}

// saveLocked persists the canonical state. No-op on anything but the
// authority. archive additionally appends a compressed history snapshot.
func (p *Peer) saveLocked(archive bool) error {
	if p.state != StateAuthoritative || p.store == nil {
		return nil
	}
	if err := p.store.SaveState(ModelKey, p.econ); err != nil {
		return fmt.Errorf("persist economy: %w", err)
	}
	if archive {
		if err := p.store.Archive(ModelKey, p.econ); err != nil {
			slog.Warn("archive snapshot failed", "error", err)
		}
	}
	return nil
}
