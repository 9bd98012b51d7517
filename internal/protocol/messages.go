// Package protocol defines the replication messages exchanged between the
// authority and its replicas, and the snapshot payload codec.
package protocol

// Version is bumped whenever the wire format changes incompatibly.
const Version = "1"

// Message type tags.
const (
	TypeRequestSnapshot = "request_snapshot"
	TypeSnapshot        = "snapshot"
	TypeSupplyDelta     = "supply_delta"
)

// Envelope is the common prefix of every message, decoded first to
// dispatch on Type.
type Envelope struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// RequestSnapshotMsg (replica -> authority) asks for the full state.
type RequestSnapshotMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PeerID          string `json:"peer_id"`
}

// SnapshotMsg (authority -> all) carries the full economy state. Payload
// is the zstd-compressed JSON ledger; Version gates stale application.
type SnapshotMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Version         uint64 `json:"version"`
	Day             int    `json:"day"`
	Payload         []byte `json:"payload"`
}

// SupplyDeltaMsg (authority -> all) carries one incremental supply change.
// Deltas commute, so reordering within a version window is harmless; the
// Version field lets replicas discard deltas already folded into a
// snapshot.
type SupplyDeltaMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Version         uint64 `json:"version"`
	ItemID          string `json:"item_id"`
	Amount          int    `json:"amount"`
}

// NewRequestSnapshot builds a snapshot request for a peer.
func NewRequestSnapshot(peerID string) RequestSnapshotMsg {
	return RequestSnapshotMsg{
		Type:            TypeRequestSnapshot,
		ProtocolVersion: Version,
		PeerID:          peerID,
	}
}

// NewSupplyDelta builds an incremental delta message.
func NewSupplyDelta(version uint64, itemID string, amount int) SupplyDeltaMsg {
	return SupplyDeltaMsg{
		Type:            TypeSupplyDelta,
		ProtocolVersion: Version,
		Version:         version,
		ItemID:          itemID,
		Amount:          amount,
	}
}
