package econ

import "sort"

// EconomyState is the complete economic state for one simulation session.
// Exactly one exists per session. On the authority it is the writable
// canonical copy; on a replica it is replaced wholesale whenever a snapshot
// arrives. Day counts simulated days; Version increases on every authority
// mutation batch and gates stale replication messages.
type EconomyState struct {
	Ledger  CategoryLedger `json:"ledger"`
	Aliases AliasMap       `json:"aliases"`
	Day     int            `json:"day"`
	Version uint64         `json:"version"`

	// Derived indices, rebuilt by Reindex on every load/receive.
	byItem       map[string]*ItemRecord
	itemCategory map[string]int
}

// NewState creates an empty state with the given alias map.
func NewState(aliases AliasMap) *EconomyState {
	s := &EconomyState{
		Ledger:  make(CategoryLedger),
		Aliases: aliases,
	}
	s.Reindex()
	return s
}

// Reindex rebuilds the flat item lookup indices from the ledger. Must be
// called after the ledger is populated or replaced.
func (s *EconomyState) Reindex() {
	s.byItem = make(map[string]*ItemRecord, s.Ledger.Count())
	s.itemCategory = make(map[string]int, s.Ledger.Count())
	for category, bucket := range s.Ledger {
		for id, rec := range bucket {
			s.byItem[id] = rec
			s.itemCategory[id] = category
		}
	}
}

// Lookup finds the record for an item across all categories. Absence is not
// an error: callers fall back to host-provided base behavior.
func (s *EconomyState) Lookup(itemID string) (*ItemRecord, bool) {
	rec, ok := s.byItem[itemID]
	return rec, ok
}

// Category returns the category an item was filed under.
func (s *EconomyState) Category(itemID string) (int, bool) {
	cat, ok := s.itemCategory[itemID]
	return cat, ok
}

// Get returns the records of a single category, empty if unknown.
func (s *EconomyState) Get(category int) map[string]*ItemRecord {
	return s.Ledger.Get(category)
}

// GetExpanded returns the records of a category merged with all its alias
// categories, primary first then aliases in alias order. Records within one
// category are ordered by item id for stable output.
func (s *EconomyState) GetExpanded(category int) []*ItemRecord {
	var out []*ItemRecord
	out = appendSorted(out, s.Ledger.Get(category))
	for _, alias := range s.Aliases[category] {
		out = appendSorted(out, s.Ledger.Get(alias))
	}
	return out
}

func appendSorted(dst []*ItemRecord, bucket map[string]*ItemRecord) []*ItemRecord {
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		dst = append(dst, bucket[id])
	}
	return dst
}

// AdjustSupply adds a signed amount to an item's supply, clamped to
// [floor, ceiling]. Returns false if the item has no record.
func (s *EconomyState) AdjustSupply(itemID string, amount, floor, ceiling int) bool {
	rec, ok := s.byItem[itemID]
	if !ok {
		return false
	}
	rec.Supply += amount
	rec.Clamp(floor, ceiling)
	return true
}

// Replace swaps in a new ledger wholesale and rebuilds indices. Used by
// replicas applying a full snapshot.
func (s *EconomyState) Replace(ledger CategoryLedger, aliases AliasMap, day int, version uint64) {
	s.Ledger = ledger
	s.Aliases = aliases
	s.Day = day
	s.Version = version
	s.Reindex()
}
