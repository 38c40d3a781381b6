package taxonomy

import "github.com/elliotchance/orderedmap/v2"

// DuplicateTypeKeys groups the ids of records sharing a type key. Only keys used by
// more than one record are returned, in the order each key was first seen.
// Uniqueness is the persistence layer's job; this is a report, not a check.
func DuplicateTypeKeys(records []Record) *orderedmap.OrderedMap[string, []int64] {
	seen := orderedmap.NewOrderedMap[string, []int64]()
	for _, rec := range records {
		if rec.TypeKey == "" {
			continue
		}
		ids, _ := seen.Get(rec.TypeKey)
		seen.Set(rec.TypeKey, append(ids, rec.ID))
	}

	dups := orderedmap.NewOrderedMap[string, []int64]()
	for _, key := range seen.Keys() {
		if ids, _ := seen.Get(key); len(ids) > 1 {
			dups.Set(key, ids)
		}
	}
	return dups
}

// DuplicateIDs returns ids that occur on more than one record, in first-seen order.
// The builder places only the first record for each of them.
func DuplicateIDs(records []Record) []int64 {
	counts := orderedmap.NewOrderedMap[int64, int]()
	for _, rec := range records {
		if rec.ID == 0 {
			continue
		}
		n, _ := counts.Get(rec.ID)
		counts.Set(rec.ID, n+1)
	}

	var dups []int64
	for _, id := range counts.Keys() {
		if n, _ := counts.Get(id); n > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

// DanglingParents returns records whose non-zero parent id matches no record.
// The builder places them at the root level.
func DanglingParents(records []Record) []Record {
	known := make(map[int64]bool, len(records))
	for _, rec := range records {
		if rec.ID != 0 {
			known[rec.ID] = true
		}
	}

	var dangling []Record
	for _, rec := range records {
		if rec.ParentID != 0 && !known[rec.ParentID] {
			dangling = append(dangling, rec)
		}
	}
	return dangling
}
