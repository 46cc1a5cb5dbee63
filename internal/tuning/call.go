// Package tuning implements the target algorithm wrapper called by the
// parameter tuning framework: it runs the solver once with a candidate
// configuration and reports the outcome on a single result line.
//
// The framework calls the wrapper as
//
//	wrapper <instance> <instance-info> <cutoff-time> <cutoff-length> <seed> [-name value]...
//
// where the instance is "pattern@target" and the trailing arguments are the
// candidate parameter values.
package tuning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Call is a parsed wrapper invocation.
type Call struct {
	Pattern      string
	Target       string
	InstanceInfo string

	// Cutoff is the time budget, in seconds.
	Cutoff       float64
	CutoffLength int64
	Seed         int64

	// Params maps parameter names, including their leading dash, to values.
	Params map[string]string
}

// ParseArgs parses the wrapper arguments, without the program name.
func ParseArgs(args []string) (*Call, error) {
	if len(args) < 5 {
		return nil, fmt.Errorf("want at least 5 arguments, got %d", len(args))
	}

	pattern, target, ok := strings.Cut(strings.TrimSpace(args[0]), "@")
	if !ok || pattern == "" || target == "" || strings.Contains(target, "@") {
		return nil, fmt.Errorf("instance %q is not of the form pattern@target", args[0])
	}
	cutoff, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse cutoff time: %w", err)
	}
	if cutoff < 0 {
		return nil, fmt.Errorf("negative cutoff time %v", cutoff)
	}
	cutlen, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse cutoff length: %w", err)
	}
	seed, err := strconv.ParseInt(args[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse seed: %w", err)
	}

	rest := args[5:]
	if len(rest)%2 != 0 {
		return nil, fmt.Errorf("parameter %q has no value", rest[len(rest)-1])
	}
	params := map[string]string{}
	for _, p := range lo.Chunk(rest, 2) {
		params[p[0]] = p[1]
	}

	return &Call{
		Pattern:      pattern,
		Target:       target,
		InstanceInfo: args[1],
		Cutoff:       cutoff,
		CutoffLength: cutlen,
		Seed:         seed,
		Params:       params,
	}, nil
}

// Timeout returns the timeout given to the solver, in whole seconds. It is
// rounded up so that the solver never stops before the cutoff.
func (c *Call) Timeout() int {
	return int(c.Cutoff + 1)
}
