package analyzer

import "fmt"

// Algorithm identifies one of the search strategies whose runs are analyzed.
// It is also the name of the results subdirectory holding the strategy's
// solver logs.
type Algorithm string

const (
	Sequential                          Algorithm = "sequential13"
	SequentialInputOrderSoftmax         Algorithm = "sequentialinputordersoftmax13"
	SequentialShuffle                   Algorithm = "sequentialshuffle13"
	SequentialAntiHeuristic             Algorithm = "sequentialantiheuristic13"
	SequentialInputOrderSoftmaxRestarts Algorithm = "sequentialinputordersoftmaxrestarts13"
	SequentialRestartsShuffle           Algorithm = "sequentialrestartsshuffle13"
	SequentialDDS                       Algorithm = "sequentialdds13"
)

// Algorithms lists every known algorithm in processing order.
var Algorithms = []Algorithm{
	Sequential,
	SequentialInputOrderSoftmax,
	SequentialShuffle,
	SequentialAntiHeuristic,
	SequentialInputOrderSoftmaxRestarts,
	SequentialRestartsShuffle,
	SequentialDDS,
}

// ParseAlgorithm returns the algorithm with the given name.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}
