package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/agora/internal/econ"
)

// Shared zstd coders; both are safe for concurrent use via EncodeAll /
// DecodeAll.
var (
	zenc, _ = zstd.NewWriter(nil)
	zdec, _ = zstd.NewReader(nil)
)

// snapshotBody is the uncompressed snapshot payload.
type snapshotBody struct {
	Ledger  econ.CategoryLedger `json:"ledger"`
	Aliases econ.AliasMap       `json:"aliases"`
}

// EncodeSnapshot packs an economy state into a wire snapshot.
func EncodeSnapshot(state *econ.EconomyState) (SnapshotMsg, error) {
	raw, err := json.Marshal(snapshotBody{Ledger: state.Ledger, Aliases: state.Aliases})
	if err != nil {
		return SnapshotMsg{}, fmt.Errorf("marshal snapshot body: %w", err)
	}
	return SnapshotMsg{
		Type:            TypeSnapshot,
		ProtocolVersion: Version,
		Version:         state.Version,
		Day:             state.Day,
		Payload:         zenc.EncodeAll(raw, nil),
	}, nil
}

// DecodeSnapshot unpacks a wire snapshot into ledger and alias map.
func DecodeSnapshot(msg SnapshotMsg) (econ.CategoryLedger, econ.AliasMap, error) {
	raw, err := zdec.DecodeAll(msg.Payload, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var body snapshotBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, fmt.Errorf("unmarshal snapshot body: %w", err)
	}
	if body.Ledger == nil {
		body.Ledger = make(econ.CategoryLedger)
	}
	if body.Aliases == nil {
		body.Aliases = make(econ.AliasMap)
	}
	return body.Ledger, body.Aliases, nil
}

// Marshal encodes any protocol message for the wire.
func Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeEnvelope reads the type/version prefix of an inbound message.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
