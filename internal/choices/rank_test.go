package choices

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeuristicOrder(t *testing.T) {
	candidates := []Candidate{{0, 2}, {1, 3}, {2, 1}}
	want := []Candidate{{1, 3}, {0, 2}, {2, 1}}

	got := HeuristicOrder(candidates)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeuristicOrder(): mismatch (+want, -got):\n%s", diff)
	}
	if diff := cmp.Diff([]Candidate{{0, 2}, {1, 3}, {2, 1}}, candidates); diff != "" {
		t.Errorf("HeuristicOrder(): input modified (+want, -got):\n%s", diff)
	}
}

func TestHeuristicOrder_tiesByDomain(t *testing.T) {
	candidates := []Candidate{{9, 4}, {3, 4}, {7, 4}, {1, 2}, {5, 6}}
	want := []Candidate{{5, 6}, {3, 4}, {7, 4}, {9, 4}, {1, 2}}

	got := HeuristicOrder(candidates)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeuristicOrder(): mismatch (+want, -got):\n%s", diff)
	}
}

func TestHeuristicOrder_largeValues(t *testing.T) {
	candidates := []Candidate{{0, 1<<20 - 1}, {1 << 34, 1 << 20}}
	want := []Candidate{{1 << 34, 1 << 20}, {0, 1<<20 - 1}}

	got := HeuristicOrder(candidates)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HeuristicOrder(): mismatch (+want, -got):\n%s", diff)
	}
}

func TestHeuristicOrder_empty(t *testing.T) {
	if got := HeuristicOrder(nil); len(got) != 0 {
		t.Errorf("HeuristicOrder(nil): want empty, got %v", got)
	}
}

// TestHeuristicOrder_random checks the heap-based order against a plain sort
// using Prefers, and that ordering an already ordered list is a no-op.
func TestHeuristicOrder_random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		seen := map[Candidate]bool{}
		n := 1 + rng.Intn(20)
		candidates := []Candidate{}
		for len(candidates) < n {
			c := Candidate{Domain: rng.Intn(50), Degree: rng.Intn(10)}
			if !seen[c] {
				seen[c] = true
				candidates = append(candidates, c)
			}
		}

		want := append([]Candidate(nil), candidates...)
		sort.Slice(want, func(i, j int) bool { return want[i].Prefers(want[j]) })

		got := HeuristicOrder(candidates)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("HeuristicOrder(%v): mismatch (+want, -got):\n%s", candidates, diff)
		}
		if diff := cmp.Diff(got, HeuristicOrder(got)); diff != "" {
			t.Fatalf("HeuristicOrder() not idempotent (+want, -got):\n%s", diff)
		}
	}
}

func TestHeuristicRank(t *testing.T) {
	testCases := []struct {
		name string
		d    Decision
		want int
	}{
		{"preferred", Decision{[]Candidate{{0, 2}, {1, 3}, {2, 1}}, 1}, 0},
		{"middle", Decision{[]Candidate{{0, 2}, {1, 3}, {2, 1}}, 0}, 1},
		{"last", Decision{[]Candidate{{0, 2}, {1, 3}, {2, 1}}, 2}, 2},
		{"single", Decision{[]Candidate{{8, 8}}, 0}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HeuristicRank(tc.d); got != tc.want {
				t.Errorf("HeuristicRank(): want %d, got %d", tc.want, got)
			}
		})
	}
}
