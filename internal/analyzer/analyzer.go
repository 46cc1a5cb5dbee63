// Package analyzer extracts choice point statistics from solver logs.
//
// For every (instance, algorithm) pair, the analyzer reads the decisions
// recorded in the algorithm's log for that instance, appends one record per
// decision to the algorithm's results file, and counts the decisions taken
// close to the root and close to the leaves of the search tree.
package analyzer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rhartert/choicetrace/internal/choices"
	"github.com/rhartert/choicetrace/internal/logging"
	"github.com/rhartert/choicetrace/internal/manifest"
	"github.com/rhartert/choicetrace/internal/pattern"
	"github.com/rhartert/choicetrace/internal/solverlog"
)

// ErrZeroMaxDepth is returned when a run has decisions but its pattern has a
// max depth of 0, which leaves the depth of those decisions undefined.
var ErrZeroMaxDepth = errors.New("pattern max depth is 0")

type Options struct {
	// ResultsDir holds one log directory and one results file per
	// algorithm.
	ResultsDir string

	Algorithms    []Algorithm
	Bands         Bands
	PatternFormat pattern.Format

	// GzipLogs reads "<instance>.out.gz" logs instead of "<instance>.out".
	GzipLogs bool

	// Isolate keeps processing the batch when a run fails to be analyzed.
	// The failure is logged instead of aborting the batch.
	Isolate bool

	Logger *slog.Logger
}

// DefaultOptions analyzes every algorithm of the "results" directory.
var DefaultOptions = Options{
	ResultsDir:    "results",
	Algorithms:    Algorithms,
	Bands:         DefaultBands,
	PatternFormat: pattern.LAD,
}

// LogPath returns the path of the log of the given algorithm on the given
// instance.
func LogPath(resultsDir string, a Algorithm, instance string, gzipped bool) string {
	p := filepath.Join(resultsDir, string(a), instance+".out")
	if gzipped {
		p += ".gz"
	}
	return p
}

// OutputPath returns the path of the results file of the given algorithm.
func OutputPath(resultsDir string, a Algorithm) string {
	return filepath.Join(resultsDir, string(a)+".choices.data")
}

type output struct {
	w     *bufio.Writer
	c     io.Closer
	stats Stats
}

type Analyzer struct {
	opts    Options
	log     *slog.Logger
	outputs map[Algorithm]*output
}

// Create creates (or truncates) the results file of every algorithm and
// writes their header. The files stay open until Close is called.
func Create(opts Options) (*Analyzer, error) {
	writers := make(map[Algorithm]io.Writer, len(opts.Algorithms))
	closeAll := func() {
		for _, w := range writers {
			w.(io.Closer).Close()
		}
	}
	for _, a := range opts.Algorithms {
		f, err := os.Create(OutputPath(opts.ResultsDir, a))
		if err != nil {
			closeAll()
			return nil, err
		}
		writers[a] = f
	}

	an, err := New(opts, writers)
	if err != nil {
		closeAll()
		return nil, err
	}
	return an, nil
}

// New returns an analyzer that writes the records of each algorithm to the
// corresponding writer. Headers are written immediately. Writers that
// implement io.Closer are closed by Close.
func New(opts Options, writers map[Algorithm]io.Writer) (*Analyzer, error) {
	if err := opts.Bands.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	an := &Analyzer{
		opts:    opts,
		log:     logger,
		outputs: make(map[Algorithm]*output, len(opts.Algorithms)),
	}
	for _, a := range opts.Algorithms {
		w, ok := writers[a]
		if !ok {
			return nil, fmt.Errorf("no output for algorithm %q", a)
		}
		out := &output{w: bufio.NewWriter(w)}
		if c, ok := w.(io.Closer); ok {
			out.c = c
		}
		if _, err := out.w.WriteString(Header); err != nil {
			return nil, err
		}
		if err := out.w.Flush(); err != nil {
			return nil, err
		}
		an.outputs[a] = out
	}
	return an, nil
}

// Close flushes and closes all the results files. Calling Close more than
// once has no effect.
func (an *Analyzer) Close() error {
	var errs []error
	for _, a := range an.opts.Algorithms {
		out := an.outputs[a]
		if err := out.w.Flush(); err != nil {
			errs = append(errs, err)
		}
		if out.c != nil {
			if err := out.c.Close(); err != nil {
				errs = append(errs, err)
			}
			out.c = nil
		}
	}
	return errors.Join(errs...)
}

// Stats returns the counts accumulated so far for the given algorithm.
func (an *Analyzer) Stats(a Algorithm) Stats {
	if out, ok := an.outputs[a]; ok {
		return out.stats
	}
	return Stats{}
}

// Summary writes one line per algorithm with its accumulated counts.
func (an *Analyzer) Summary(w io.Writer) error {
	for _, a := range an.opts.Algorithms {
		if _, err := fmt.Fprintf(w, "%s %s\n", a, an.outputs[a].stats); err != nil {
			return err
		}
	}
	return nil
}

// Run analyzes every entry of the manifest for every algorithm, in manifest
// order then algorithm order. Unless the Isolate option is set, it stops at
// the first error.
func (an *Analyzer) Run(entries []manifest.Entry) error {
	failed := 0
	for _, e := range entries {
		for _, a := range an.opts.Algorithms {
			err := an.Process(e.Name, e.Family, a, e.Pattern)
			if err == nil {
				continue
			}
			if !an.opts.Isolate {
				return err
			}
			failed++
			an.log.Error("skipping run", "instance", e.Name, "algorithm", a, "error", err)
		}
	}
	if failed > 0 {
		an.log.Warn("some runs could not be analyzed", "failed", failed)
	}
	return nil
}

// Process analyzes the log of algorithm a on the given instance. Runs that
// have no log yet, and runs that did not succeed, are silently skipped. Any
// other problem is returned; records written before the problem was found are
// kept.
func (an *Analyzer) Process(instance, family string, a Algorithm, patternPath string) error {
	out, ok := an.outputs[a]
	if !ok {
		return fmt.Errorf("algorithm %q is not analyzed", a)
	}

	maxDepth, err := pattern.MaxDepth(patternPath, an.opts.PatternFormat)
	if err != nil {
		return fmt.Errorf("instance %s: %w", instance, err)
	}

	logPath := LogPath(an.opts.ResultsDir, a, instance, an.opts.GzipLogs)
	l, err := solverlog.Open(logPath, an.opts.GzipLogs)
	if errors.Is(err, fs.ErrNotExist) {
		an.log.Debug("no log", "instance", instance, "algorithm", a, "path", logPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("instance %s, algorithm %s: %w", instance, a, err)
	}

	if !l.Succeeded() {
		an.log.Debug("unsuccessful run", "instance", instance, "algorithm", a, "status", l.Status())
		return nil
	}

	depths, err := l.Depths()
	if err != nil {
		return fmt.Errorf("instance %s, algorithm %s: %w", instance, a, err)
	}

	defer out.w.Flush()

	blocks := choices.Blocks(l.Choices())
	n := 0
	for i := 0; i < len(depths) && i < len(blocks); i++ {
		if choices.IsEmpty(blocks[i]) {
			continue
		}
		d, err := choices.ParseBlock(blocks[i])
		if err != nil {
			return fmt.Errorf("instance %s, algorithm %s, block %d: %w", instance, a, i, err)
		}
		if maxDepth == 0 {
			return fmt.Errorf("instance %s, algorithm %s: %w", instance, a, ErrZeroMaxDepth)
		}

		r := NewRecord(instance, family, d, depths[i], maxDepth)
		out.stats.Add(an.opts.Bands, r.FracDepth, r.Choice)
		if _, err := fmt.Fprintln(out.w, r.String()); err != nil {
			return err
		}
		n++
	}

	an.log.Debug("run analyzed", "instance", instance, "algorithm", a, "decisions", n)
	return nil
}
