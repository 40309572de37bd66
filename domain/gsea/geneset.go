package gsea

import (
	"sort"
)

// GeneSet is a named, unordered collection of member gene ids.
// Immutable once loaded.
type GeneSet struct {
	Term    string   `json:"term"`
	Members []string `json:"members"`
}

// MemberSet returns the members as a lookup set
func (g GeneSet) MemberSet() map[string]struct{} {
	set := make(map[string]struct{}, len(g.Members))
	for _, m := range g.Members {
		set[m] = struct{}{}
	}
	return set
}

// GeneSetCollection maps term name to gene set
type GeneSetCollection map[string]GeneSet

// MatchedSet is a gene set resolved against a concrete gene universe.
// Member is a mask over universe positions, so membership survives any
// reordering of the universe (phenotype permutations reorder, never replace).
type MatchedSet struct {
	Term        string
	GeneSetSize int
	MatchedSize int
	Member      []bool
}

// Filter resolves every set against the universe and keeps those whose
// matched size lies in [minSize, maxSize]. Sets outside the window are
// dropped silently. The result is ordered by term name so downstream
// iteration is deterministic regardless of map order.
func (c GeneSetCollection) Filter(universe []string, minSize, maxSize int) []MatchedSet {
	pos := make(map[string]int, len(universe))
	for i, g := range universe {
		pos[g] = i
	}

	matched := make([]MatchedSet, 0, len(c))
	for term, set := range c {
		member := make([]bool, len(universe))
		count := 0
		for _, gene := range set.Members {
			if i, ok := pos[gene]; ok && !member[i] {
				member[i] = true
				count++
			}
		}
		if count < minSize || count > maxSize {
			continue
		}
		matched = append(matched, MatchedSet{
			Term:        term,
			GeneSetSize: len(set.Members),
			MatchedSize: count,
			Member:      member,
		})
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Term < matched[j].Term })
	return matched
}
