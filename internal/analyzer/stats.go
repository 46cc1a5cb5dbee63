package analyzer

import "fmt"

// Stats counts the decisions taken close to the root and close to the leaves
// of the search tree, and how many of them selected the first candidate.
type Stats struct {
	NearRoot      int
	NearLeaf      int
	NearRootFirst int
	NearLeafFirst int
}

// Bands delimits the near-root and near-leaf parts of the search tree in terms
// of depth fraction. Both bounds are inclusive.
type Bands struct {
	NearRoot float64
	NearLeaf float64
}

var DefaultBands = Bands{
	NearRoot: 0.1,
	NearLeaf: 0.9,
}

// Validate checks that the near-root band ends before the near-leaf band
// starts.
func (b Bands) Validate() error {
	if b.NearRoot < 0 || b.NearLeaf > 1 || b.NearRoot >= b.NearLeaf {
		return fmt.Errorf("invalid depth bands: want 0 <= near root (%v) < near leaf (%v) <= 1", b.NearRoot, b.NearLeaf)
	}
	return nil
}

// Add records a decision taken at the given depth fraction.
func (s *Stats) Add(b Bands, fracDepth float64, choiceIndex int) {
	if fracDepth <= b.NearRoot {
		s.NearRoot++
		if choiceIndex == 0 {
			s.NearRootFirst++
		}
	} else if fracDepth >= b.NearLeaf {
		s.NearLeaf++
		if choiceIndex == 0 {
			s.NearLeafFirst++
		}
	}
}

// String formats the counts as "[near_root, near_leaf] [first, first]".
func (s Stats) String() string {
	return fmt.Sprintf("[%d, %d] [%d, %d]", s.NearRoot, s.NearLeaf, s.NearRootFirst, s.NearLeafFirst)
}
