// Package manifest reads instance manifests: one instance per line, given as
// four space-separated fields.
//
//	name pattern_path target_path family
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Entry struct {
	Name    string
	Pattern string
	Target  string
	Family  string
}

// ParseFile reads the manifest in the given file.
func ParseFile(filename string) ([]Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("could not parse manifest %q: %w", filename, err)
	}
	return entries, nil
}

// Parse reads a manifest from r. Blank lines and lines starting with '#' are
// ignored.
func Parse(r io.Reader) ([]Entry, error) {
	entries := []Entry{}
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseLine(line string) (Entry, error) {
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return Entry{}, fmt.Errorf("want 4 fields, got %d in %q", len(parts), line)
	}
	return Entry{
		Name:    parts[0],
		Pattern: parts[1],
		Target:  parts[2],
		Family:  parts[3],
	}, nil
}
