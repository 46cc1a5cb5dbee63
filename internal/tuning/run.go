package tuning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rhartert/choicetrace/internal/logging"
	"github.com/rhartert/choicetrace/internal/solverlog"
)

// Status is the outcome of a run as understood by the tuning framework.
type Status string

const (
	Success Status = "SUCCESS"
	Timeout Status = "TIMEOUT"
	Crashed Status = "CRASHED"

	// Abort asks the framework to stop the whole tuning process. It is
	// reported when the wrapper itself is interrupted.
	Abort Status = "ABORT"
)

// LubyMultiplier is the only tuned parameter.
const LubyMultiplier = "-luby-multiplier"

// Result is the outcome of a single run.
type Result struct {
	Status Status

	// Runtime in seconds.
	Runtime float64
	Seed    int64
}

// String returns the result line expected by the tuning framework.
func (r Result) String() string {
	return fmt.Sprintf("Result of algorithm run: %s, %f, 0, 0, %d", r.Status, r.Runtime, r.Seed)
}

// Runner runs the solver.
type Runner struct {
	Solver     string
	PathPrefix string
	Flags      []string

	// Grace is added to the solver's own timeout before the process is
	// killed.
	Grace time.Duration

	Logger *slog.Logger
}

// Args returns the solver arguments for the given call.
func (r *Runner) Args(c *Call) ([]string, error) {
	luby, ok := c.Params[LubyMultiplier]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", LubyMultiplier)
	}
	if _, err := strconv.ParseFloat(luby, 64); err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", LubyMultiplier, luby, err)
	}

	args := []string{"--luby-multiplier", luby, "--timeout", strconv.Itoa(c.Timeout())}
	args = append(args, r.Flags...)
	args = append(args,
		filepath.Join(r.PathPrefix, c.Pattern),
		filepath.Join(r.PathPrefix, c.Target),
	)
	return args, nil
}

// Run runs the solver once. Failures of the solver are reported through the
// result status; an error is only returned when the call cannot be turned into
// a solver command.
func (r *Runner) Run(ctx context.Context, c *Call) (Result, error) {
	args, err := r.Args(c)
	if err != nil {
		return Result{}, err
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	limit := time.Duration(c.Timeout())*time.Second + r.Grace
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.Solver, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	logger.Debug("running solver", "solver", r.Solver, "args", args, "limit", limit)
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := Result{Status: Success, Runtime: elapsed.Seconds(), Seed: c.Seed}

	out, err := solverlog.Parse(&stdout)
	if err != nil {
		logger.Warn("could not parse solver output", "error", err)
	} else if ms, ok := reportedRuntime(out); ok {
		res.Runtime = ms / 1000
	}

	switch {
	case ctx.Err() != nil:
		res.Status = Abort
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Status = Timeout
	case runErr != nil:
		res.Status = Crashed
		logger.Error("solver failed", "error", runErr, "stderr", stderr.String())
	case out != nil && isAborted(out):
		res.Status = Timeout
	}
	return res, nil
}

// isAborted returns true if the solver reported that it hit its timeout.
func isAborted(out *solverlog.Log) bool {
	v, ok := out.Get(solverlog.KeyStatus)
	return ok && v == "aborted"
}

// reportedRuntime returns the runtime, in milliseconds, printed by the
// solver.
func reportedRuntime(out *solverlog.Log) (float64, bool) {
	v, ok := out.Get("runtime")
	if !ok {
		return 0, false
	}
	ms, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}
