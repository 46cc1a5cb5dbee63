// Package solverlog reads the "key = value" logs written by the solver at the
// end of a run.
package solverlog

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	KeyStatus  = "status"
	KeyWhere   = "where"
	KeyChoices = "choices"
)

// minLines is the number of lines a log must have to reach its status line.
// Shorter logs come from runs that were killed before reporting.
const minLines = 6

// maxLineSize bounds the length of a single log line. The choices line grows
// with the depth of the search tree and can be very long.
const maxLineSize = 64 << 20

// ErrMissingField is returned when a field required to analyze a successful
// run is not in the log.
var ErrMissingField = errors.New("missing field")

// Field is a single "key = value" line. Both sides are trimmed.
type Field struct {
	Key   string
	Value string
}

// Log is the ordered list of fields of a solver log.
type Log struct {
	Fields []Field
	index  map[string]int
}

// Open reads the log in the given file. If gzipped is true, the file is
// decompressed on the fly. Errors returned when the file does not exist match
// fs.ErrNotExist.
func Open(filename string, gzipped bool) (*Log, error) {
	rc, err := reader(filename, gzipped)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	l, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading log %q: %w", filename, err)
	}
	return l, nil
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !gzipped {
		return file, nil
	}
	zr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error reading gzip file %q: %w", filename, err)
	}
	return &gzipFile{Reader: zr, file: file}, nil
}

// gzipFile closes both the decompressor and the underlying file.
type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// Parse reads a log from r. Every line becomes a field, including blank lines
// and lines without a separator (their value is empty), so that the number of
// fields is the number of lines. Keys may repeat; lookups return the first
// occurrence.
func Parse(r io.Reader) (*Log, error) {
	l := &Log{index: map[string]int{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		key, value, _ := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		f := Field{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		}
		if _, ok := l.index[f.Key]; !ok {
			l.index[f.Key] = len(l.Fields)
		}
		l.Fields = append(l.Fields, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return l, nil
}

// Len returns the number of lines in the log.
func (l *Log) Len() int {
	return len(l.Fields)
}

// Get returns the value of the first field with the given key.
func (l *Log) Get(key string) (string, bool) {
	i, ok := l.index[key]
	if !ok {
		return "", false
	}
	return l.Fields[i].Value, true
}

// Status returns the status of the run. Truncated logs and logs without a
// status field are reported as aborted.
func (l *Log) Status() Status {
	if l.Len() < minLines {
		return Aborted
	}
	v, ok := l.Get(KeyStatus)
	if !ok {
		return Aborted
	}
	return ParseStatus(v)
}

// Succeeded returns true if the run completed and found a solution, which is
// the only case where the log carries a complete decision trace.
func (l *Log) Succeeded() bool {
	return l.Status() == True
}

// Depths returns the search-tree depths, starting at 1, at which the "where"
// vector records a branching decision (i.e. a non-negative entry).
func (l *Log) Depths() ([]int, error) {
	v, ok := l.Get(KeyWhere)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, KeyWhere)
	}

	var depths []int
	for i, s := range strings.Fields(v) {
		val, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q field at position %d: %w", KeyWhere, i, err)
		}
		if val >= 0 {
			depths = append(depths, i+1)
		}
	}
	return depths, nil
}

// Choices returns the raw choices value, or the empty string if the log has
// no choices field.
func (l *Log) Choices() string {
	v, _ := l.Get(KeyChoices)
	return v
}
