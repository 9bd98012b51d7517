package mesh

import (
	"encoding/json"
	"log/slog"

	"github.com/talgya/agora/internal/econ"
	"github.com/talgya/agora/internal/protocol"
)

// HandleMessage dispatches an inbound replication message on a replica.
// Malformed, stale, and version-mismatched messages are discarded; none of
// them are errors for the transport.
func (p *Peer) HandleMessage(data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		slog.Debug("malformed mesh message discarded", "error", err)
		return
	}
	if env.ProtocolVersion != protocol.Version {
		slog.Debug("protocol version mismatch, message discarded",
			"got", env.ProtocolVersion, "want", protocol.Version)
		return
	}

	switch env.Type {
	case protocol.TypeSnapshot:
		var msg protocol.SnapshotMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("malformed snapshot discarded", "error", err)
			return
		}
		p.applySnapshot(msg)
	case protocol.TypeSupplyDelta:
		var msg protocol.SupplyDeltaMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("malformed delta discarded", "error", err)
			return
		}
		p.applyDelta(msg)
	case protocol.TypeRequestSnapshot:
		// Authority-side only; the hub answers these per subscriber.
	default:
		slog.Debug("unknown mesh message type discarded", "type", env.Type)
	}
}

// applySnapshot replaces the replica state wholesale. Snapshots are total
// state, so last-applied-wins is safe; the version gate only discards
// snapshots older than what the replica already holds.
func (p *Peer) applySnapshot(msg protocol.SnapshotMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateAuthoritative || p.state == StateGenerating {
		slog.Debug("authority ignoring inbound snapshot")
		return
	}
	if p.econ != nil && msg.Version <= p.econ.Version {
		slog.Debug("stale snapshot discarded",
			"version", msg.Version, "have", p.econ.Version)
		return
	}

	ledger, aliases, err := protocol.DecodeSnapshot(msg)
	if err != nil {
		slog.Error("snapshot decode failed", "error", err)
		return
	}

	if p.econ == nil {
		p.econ = econ.NewState(aliases)
	}
	p.econ.Replace(ledger, aliases, msg.Day, msg.Version)
	if p.state == StateAwaitingSnapshot {
		p.state = StateReplica
		slog.Info("replica synchronized",
			"peer", p.ID, "items", p.econ.Ledger.Count(), "version", msg.Version)
	} else {
		slog.Debug("snapshot applied",
			"items", p.econ.Ledger.Count(), "version", msg.Version, "day", msg.Day)
	}
}

// applyDelta folds an incremental supply change into the replica state.
// Deltas at or below the current version were already incorporated by a
// snapshot and would double-count, so they are discarded. A delta for an
// unknown item (snapshot race) is dropped; the next full snapshot resolves
// any drift.
func (p *Peer) applyDelta(msg protocol.SupplyDeltaMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateReplica {
		p.droppedDeltas++
		slog.Debug("delta before first snapshot dropped",
			"item", msg.ItemID, "state", StateName(p.state))
		return
	}
	if msg.Version <= p.econ.Version {
		slog.Debug("stale delta discarded",
			"item", msg.ItemID, "version", msg.Version, "have", p.econ.Version)
		return
	}

	cfg := p.eng.Config()
	category, _ := p.econ.Category(msg.ItemID)
	if !p.econ.AdjustSupply(msg.ItemID, msg.Amount, cfg.MinSupply, cfg.MaxSupplyFor(category)) {
		p.droppedDeltas++
		slog.Debug("delta for unknown item dropped",
			"item", msg.ItemID, "version", msg.Version)
		return
	}
	p.econ.Version = msg.Version
}

// DroppedDeltas reports how many inbound deltas were dropped, for the
// diagnostics surface.
func (p *Peer) DroppedDeltas() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.droppedDeltas
}
