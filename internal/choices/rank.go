package choices

import (
	"github.com/rhartert/yagh"
)

// HeuristicOrder returns the candidates in the order the most-constrained
// first heuristic prefers them (see Candidate.Prefers). The input slice is
// not modified.
func HeuristicOrder(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return nil
	}
	maxDomain := 0
	for _, c := range candidates {
		if c.Domain > maxDomain {
			maxDomain = c.Domain
		}
	}
	scale := maxDomain + 1

	heap := yagh.New[int](len(candidates))
	for i, c := range candidates {
		heap.Put(i, cost(c, scale))
	}

	order := make([]Candidate, 0, len(candidates))
	for {
		next, ok := heap.Pop()
		if !ok {
			break
		}
		order = append(order, candidates[next.Elem])
	}
	return order
}

// cost maps a candidate to a key whose natural order is the heuristic order.
// The domain term is always in [0, scale) so it only breaks ties between equal
// degrees.
func cost(c Candidate, scale int) int {
	return -c.Degree*scale + c.Domain
}

// HeuristicRank returns the position of the decision's selected candidate in
// the heuristic order of its candidates.
func HeuristicRank(d Decision) int {
	chosen := d.Chosen()
	for i, c := range HeuristicOrder(d.Candidates) {
		if c == chosen {
			return i
		}
	}
	// Unreachable: the chosen candidate is one of the ordered candidates.
	panic("selected candidate missing from heuristic order")
}
