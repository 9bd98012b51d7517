package econ

// CategoryLedger maps a category id to the item records that belong to it.
// Item ids are unique within a category; categories are disjoint by
// construction, so an item id appears in exactly one category.
type CategoryLedger map[int]map[string]*ItemRecord

// AliasMap maps a primary category id to the ordered alias categories that
// share its display group. Built once per economy load; read-only after.
type AliasMap map[int][]int

// Put inserts a record into the given category, creating the category
// bucket on first use.
func (l CategoryLedger) Put(category int, rec *ItemRecord) {
	bucket, ok := l[category]
	if !ok {
		bucket = make(map[string]*ItemRecord)
		l[category] = bucket
	}
	bucket[rec.ID] = rec
}

// Get returns the records for a category, or an empty map if the category
// is unknown. Callers must not mutate the returned map.
func (l CategoryLedger) Get(category int) map[string]*ItemRecord {
	if bucket, ok := l[category]; ok {
		return bucket
	}
	return map[string]*ItemRecord{}
}

// Count returns the total number of item records across all categories.
func (l CategoryLedger) Count() int {
	n := 0
	for _, bucket := range l {
		n += len(bucket)
	}
	return n
}

// ItemIDs returns the set of all item ids in the ledger. Used to compare a
// persisted ledger against a freshly generated one during reconciliation.
func (l CategoryLedger) ItemIDs() map[string]bool {
	ids := make(map[string]bool, l.Count())
	for _, bucket := range l {
		for id := range bucket {
			ids[id] = true
		}
	}
	return ids
}
