package colle

import "sort"

// DetectFamilies parses every EvenEligibleGroups/OddEligibleGroups cell in
// the catalog into sorted group slices, deduplicates them, and keeps only
// the minimal families: no family that is a strict superset of another.
// Falls back to a single family containing every group when nothing
// survives the minimality filter.
func DetectFamilies(catalog Catalog) [][]int {
	seen := make(map[string][]int)
	addSet := func(set map[int]struct{}) {
		if len(set) == 0 {
			return
		}
		members := make([]int, 0, len(set))
		for g := range set {
			members = append(members, g)
		}
		sort.Ints(members)
		seen[familyKey(members)] = members
	}
	for _, slot := range catalog.Slots {
		addSet(slot.EvenGroups)
		addSet(slot.OddGroups)
	}

	candidates := make([][]int, 0, len(seen))
	for _, members := range seen {
		candidates = append(candidates, members)
	}

	var minimal [][]int
	for i, a := range candidates {
		isSuperset := false
		for j, b := range candidates {
			if i == j {
				continue
			}
			if isStrictSuperset(a, b) {
				isSuperset = true
				break
			}
		}
		if !isSuperset {
			minimal = append(minimal, a)
		}
	}

	if len(minimal) == 0 {
		return [][]int{append([]int(nil), catalog.Groups...)}
	}

	sort.Slice(minimal, func(i, j int) bool { return minimal[i][0] < minimal[j][0] })
	return minimal
}

func familyKey(sortedMembers []int) string {
	key := make([]byte, 0, len(sortedMembers)*4)
	for _, m := range sortedMembers {
		key = append(key, byte(m), byte(m>>8), byte(m>>16), byte(m>>24))
	}
	return string(key)
}

// isStrictSuperset reports whether a contains every element of b plus at
// least one more.
func isStrictSuperset(a, b []int) bool {
	if len(a) <= len(b) {
		return false
	}
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Extend synthesizes weeks 9..24 from an 8-week assignment and the
// original catalog, by rotating group labels within each minimal family.
// For base week i (0-indexed, i=0..7) and shift k in {1,2}, the new week
// number is maxWeek + (k-1)*8 + i + 1.
func Extend(catalog Catalog, assignment Assignment) Assignment {
	families := DetectFamilies(catalog)
	memberIndex := make(map[int]struct {
		family int
		pos    int
	})
	for fi, family := range families {
		for pos, g := range family {
			memberIndex[g] = struct {
				family int
				pos    int
			}{family: fi, pos: pos}
		}
	}

	maxWeek := 0
	for _, w := range catalog.Weeks {
		if w.Number > maxWeek {
			maxWeek = w.Number
		}
	}

	baseWeeks := catalog.Weeks
	if len(baseWeeks) > 8 {
		baseWeeks = baseWeeks[:8]
	}

	extended := NewAssignment()
	for k, g := range assignment.Cells {
		extended.Cells[k] = g
	}

	for k := 1; k <= 2; k++ {
		for i, w := range baseWeeks {
			newWeek := maxWeek + (k-1)*8 + i + 1
			for si := range catalog.Slots {
				g, ok := assignment.Get(si, w.Number)
				if !ok {
					continue
				}
				newGroup := g
				if idx, found := memberIndex[g]; found {
					family := families[idx.family]
					newGroup = family[(idx.pos+k)%len(family)]
				}
				extended.Set(si, newWeek, newGroup)
			}
		}
	}

	return extended
}
