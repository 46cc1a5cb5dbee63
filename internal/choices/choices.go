// Package choices parses the decision blocks recorded by the solver in the
// "choices" field of its log and ranks candidates the way the variable
// ordering heuristic would.
//
// A choices value is a dot-separated list of blocks, one per branching depth:
//
//	[3-2,1-5,4-5], 2.[2-1,2-0], 0.
//
// Each block lists the candidates as domain-degree pairs, in the order the
// search considered them, followed by the 0-based index of the candidate that
// was selected. Empty blocks carry no decision.
package choices

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnbalancedBrackets is returned when a block does not have the
	// "[candidates], index" shape.
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")

	// ErrBadCandidatePair is returned when a candidate is not made of exactly
	// two integers separated by a dash.
	ErrBadCandidatePair = errors.New("bad candidate pair")

	// ErrBadIndex is returned when the selected index is not an integer or
	// does not designate one of the block's candidates.
	ErrBadIndex = errors.New("bad selected index")
)

// Candidate is one of the alternatives available at a choice point.
type Candidate struct {
	Domain int // number of values left in the variable's domain
	Degree int
}

func (c Candidate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Domain, c.Degree)
}

// Prefers returns true if the heuristic would pick c before o: higher degree
// first, then smaller domain.
func (c Candidate) Prefers(o Candidate) bool {
	if c.Degree != o.Degree {
		return c.Degree > o.Degree
	}
	return c.Domain < o.Domain
}

// Decision is a parsed decision block.
type Decision struct {
	Candidates []Candidate
	Selected   int
}

// Chosen returns the selected candidate.
func (d Decision) Chosen() Candidate {
	return d.Candidates[d.Selected]
}

// Blocks splits a choices value into its raw blocks. Empty blocks are kept so
// that callers can keep them aligned with the depth vector.
func Blocks(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ".")
}

// IsEmpty returns true if the block records no decision.
func IsEmpty(block string) bool {
	return strings.TrimSpace(block) == ""
}

// ParseBlock parses a single non-empty decision block.
func ParseBlock(block string) (Decision, error) {
	s := strings.TrimSpace(block)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return Decision{}, fmt.Errorf("%w: no opening bracket in %q", ErrUnbalancedBrackets, block)
	}
	parts := strings.Split(s[open+1:], "], ")
	if len(parts) != 2 {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnbalancedBrackets, block)
	}

	candidates, err := parseCandidates(parts[0])
	if err != nil {
		return Decision{}, err
	}

	selected, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %q", ErrBadIndex, parts[1])
	}
	if selected < 0 || selected >= len(candidates) {
		return Decision{}, fmt.Errorf("%w: %d not in [0, %d)", ErrBadIndex, selected, len(candidates))
	}

	return Decision{Candidates: candidates, Selected: selected}, nil
}

func parseCandidates(list string) ([]Candidate, error) {
	tokens := strings.Split(list, ",")
	candidates := make([]Candidate, len(tokens))
	for i, tok := range tokens {
		c, err := parseCandidate(tok)
		if err != nil {
			return nil, err
		}
		candidates[i] = c
	}
	return candidates, nil
}

func parseCandidate(tok string) (Candidate, error) {
	pair := strings.Split(tok, "-")
	if len(pair) != 2 {
		return Candidate{}, fmt.Errorf("%w: %q", ErrBadCandidatePair, tok)
	}
	domain, err := strconv.Atoi(strings.TrimSpace(pair[0]))
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %q", ErrBadCandidatePair, tok)
	}
	degree, err := strconv.Atoi(strings.TrimSpace(pair[1]))
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: %q", ErrBadCandidatePair, tok)
	}
	return Candidate{Domain: domain, Degree: degree}, nil
}
