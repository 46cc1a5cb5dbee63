// Package pattern extracts the maximum search depth of an instance from its
// pattern graph file. Every pattern vertex is assigned at most once along a
// branch, so the depth of the search tree is bounded by the number of pattern
// vertices.
package pattern

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rhartert/dimacs"
)

// Format is the file format of a pattern graph.
type Format string

const (
	// LAD files start with the number of vertices on their first line.
	LAD Format = "lad"

	// DIMACS files give the number of vertices in their "p edge" line.
	DIMACS Format = "dimacs"
)

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case LAD, DIMACS:
		return f, nil
	default:
		return "", fmt.Errorf("unknown pattern format %q", s)
	}
}

// MaxDepth returns the maximum search depth of the pattern in filename.
func MaxDepth(filename string, format Format) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var depth int
	switch format {
	case LAD:
		depth, err = readLAD(file)
	case DIMACS:
		depth, err = readDIMACS(file)
	default:
		err = fmt.Errorf("unknown pattern format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("could not read max depth from %q: %w", filename, err)
	}
	return depth, nil
}

func readLAD(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("empty file")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative vertex count %d", n)
	}
	return n, nil
}

// errHeaderRead stops the DIMACS reader once the problem line is known. The
// edges that follow are not needed.
var errHeaderRead = errors.New("header read")

// headerBuilder implements dimacs.Builder and only records the problem line.
type headerBuilder struct {
	found    bool
	vertices int
}

func (b *headerBuilder) Problem(problem string, nVertices int, nEdges int) error {
	if problem != "edge" && problem != "col" {
		return fmt.Errorf("not a DIMACS graph: problem type %q", problem)
	}
	b.found = true
	b.vertices = nVertices
	return errHeaderRead
}

func (b *headerBuilder) Clause(_ []int) error {
	return fmt.Errorf("edge line before problem line")
}

func (b *headerBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func readDIMACS(r io.Reader) (int, error) {
	b := &headerBuilder{}
	err := dimacs.ReadBuilder(r, b)
	if b.found {
		if b.vertices < 0 {
			return 0, fmt.Errorf("negative vertex count %d", b.vertices)
		}
		return b.vertices, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("missing problem line")
}
