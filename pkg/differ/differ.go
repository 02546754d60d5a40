package differ

import "sort"

// Diff compares the ids currently mirrored for a category against a fresh
// snapshot keyed by id. Updated holds every id present in both; no value-level
// comparison is performed. Duplicate previous ids collapse.
func Diff[V any](previous []string, fresh map[string]V) *Changeset {
	prev := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		prev[id] = struct{}{}
	}

	cs := &Changeset{
		Added:   []string{},
		Updated: []string{},
		Removed: []string{},
	}

	for id := range prev {
		if _, ok := fresh[id]; ok {
			cs.Updated = append(cs.Updated, id)
		} else {
			cs.Removed = append(cs.Removed, id)
		}
	}
	for id := range fresh {
		if _, ok := prev[id]; !ok {
			cs.Added = append(cs.Added, id)
		}
	}

	sort.Strings(cs.Added)
	sort.Strings(cs.Updated)
	sort.Strings(cs.Removed)

	cs.Summary = ChangesetSummary{
		Added:   len(cs.Added),
		Updated: len(cs.Updated),
		Removed: len(cs.Removed),
	}
	return cs
}

// Keys returns the sorted keys of m.
func Keys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
