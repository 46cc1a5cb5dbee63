package analyzer

import (
	"math"
	"strconv"
	"strings"

	"github.com/rhartert/choicetrace/internal/choices"
)

// Header is the first line of every results file.
const Header = "# instance family n_choices choice frac_choice heur_choice frac_heur_choice depth max_depth frac_depth weird\n"

// Record holds the statistics of a single decision.
type Record struct {
	Instance       string
	Family         string
	NumChoices     int
	Choice         int
	FracChoice     float64
	HeurChoice     int
	FracHeurChoice float64
	Depth          int
	MaxDepth       int
	FracDepth      float64
	Weird          float64
}

// NewRecord computes the statistics of decision d, taken at the given depth
// of a search tree of depth maxDepth. Divisions by zero follow IEEE 754 and
// yield infinities or NaN.
func NewRecord(instance, family string, d choices.Decision, depth, maxDepth int) Record {
	n := len(d.Candidates)
	heur := choices.HeuristicRank(d)
	fracChoice := float64(d.Selected) / float64(n)
	fracDepth := float64(depth) / float64(maxDepth)
	return Record{
		Instance:       instance,
		Family:         family,
		NumChoices:     n,
		Choice:         d.Selected,
		FracChoice:     fracChoice,
		HeurChoice:     heur,
		FracHeurChoice: float64(heur) / float64(n),
		Depth:          depth,
		MaxDepth:       maxDepth,
		FracDepth:      fracDepth,
		Weird:          fracChoice / fracDepth,
	}
}

// String returns the space-separated line written to results files, without
// the trailing newline.
func (r Record) String() string {
	fields := []string{
		r.Instance,
		r.Family,
		strconv.Itoa(r.NumChoices),
		strconv.Itoa(r.Choice),
		formatFloat(r.FracChoice),
		strconv.Itoa(r.HeurChoice),
		formatFloat(r.FracHeurChoice),
		strconv.Itoa(r.Depth),
		strconv.Itoa(r.MaxDepth),
		formatFloat(r.FracDepth),
		formatFloat(r.Weird),
	}
	return strings.Join(fields, " ")
}

// formatFloat writes f as the shortest decimal that reads back as f, always
// with a fractional part or an exponent so that columns keep a float shape
// ("0.0", "0.5", "1e-05", "inf").
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
