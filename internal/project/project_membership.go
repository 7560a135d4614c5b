package project

import "slices"

// dedupeIDs drops zero and repeated ids and returns the rest in ascending order.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// diffMembers computes the membership changes that turn current into target.
// removed = current \ target, added = target \ current, both ascending.
func diffMembers(current, target []uint) (added, removed []uint) {
	inCurrent := make(map[uint]struct{}, len(current))
	for _, id := range current {
		inCurrent[id] = struct{}{}
	}
	inTarget := make(map[uint]struct{}, len(target))
	for _, id := range target {
		inTarget[id] = struct{}{}
	}

	for id := range inCurrent {
		if _, ok := inTarget[id]; !ok {
			removed = append(removed, id)
		}
	}
	for id := range inTarget {
		if _, ok := inCurrent[id]; !ok {
			added = append(added, id)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

// missingIDs returns the requested ids that are not in existing.
func missingIDs(requested, existing []uint) []uint {
	found := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	out := []uint{}
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
