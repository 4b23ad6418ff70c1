package giveaway

import "sort"

// DiffPartners returns the partner ids to add and to remove so that the set
// current becomes next. Both results are sorted and free of duplicates.
func DiffPartners(current, next []int64) (added, removed []int64) {
	cur := make(map[int64]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	nxt := make(map[int64]struct{}, len(next))
	for _, id := range next {
		nxt[id] = struct{}{}
	}

	for id := range nxt {
		if _, ok := cur[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range cur {
		if _, ok := nxt[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}

// PartnerSet dedupes ids, drops non-positive ones and the owner
func PartnerSet(ownerID int64, ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || id == ownerID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
