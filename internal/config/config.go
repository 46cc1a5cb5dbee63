// Package config holds the settings of the choicetrace commands. Settings can
// be read from a YAML file; command-line flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/rhartert/choicetrace/internal/analyzer"
	"github.com/rhartert/choicetrace/internal/logging"
	"github.com/rhartert/choicetrace/internal/pattern"
)

type Config struct {
	ResultsDir    string   `yaml:"results_dir"`
	InstancesFile string   `yaml:"instances_file"`
	Algorithms    []string `yaml:"algorithms"`
	NearRoot      float64  `yaml:"near_root"`
	NearLeaf      float64  `yaml:"near_leaf"`
	Isolate       bool     `yaml:"isolate"`
	PatternFormat string   `yaml:"pattern_format"`
	GzipLogs      bool     `yaml:"gzip_logs"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	Wrapper Wrapper `yaml:"wrapper"`
}

// Wrapper configures how the tuning wrapper calls the solver.
type Wrapper struct {
	// Solver is the path of the solver binary.
	Solver string `yaml:"solver"`

	// PathPrefix is prepended to the pattern and target paths of the
	// instance, which are relative to the tuning scenario directory.
	PathPrefix string `yaml:"path_prefix"`

	// Flags are passed to the solver before the pattern and target paths.
	Flags []string `yaml:"flags"`

	// Grace is how long the solver may overrun its own timeout before it is
	// killed.
	Grace time.Duration `yaml:"grace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ResultsDir:    "results",
		InstancesFile: "instances.txt",
		Algorithms:    lo.Map(analyzer.Algorithms, func(a analyzer.Algorithm, _ int) string { return string(a) }),
		NearRoot:      analyzer.DefaultBands.NearRoot,
		NearLeaf:      analyzer.DefaultBands.NearLeaf,
		PatternFormat: string(pattern.LAD),
		LogLevel:      "info",
		Wrapper: Wrapper{
			Solver:     "../../code/solve_subgraph_isomorphism",
			PathPrefix: "..",
			Flags:      []string{"--restarts", "--softmax-shuffle", "--input-order", "customisable-sequential"},
			Grace:      5 * time.Second,
		},
	}
}

// Load reads the configuration file at path on top of the defaults. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.AnalyzerAlgorithms(); err != nil {
		return err
	}
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("no algorithm to analyze")
	}
	if dup := lo.FindDuplicates(c.Algorithms); len(dup) > 0 {
		return fmt.Errorf("duplicate algorithms %q", dup)
	}
	if err := c.Bands().Validate(); err != nil {
		return err
	}
	if _, err := pattern.ParseFormat(c.PatternFormat); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Wrapper.Grace < 0 {
		return fmt.Errorf("negative wrapper grace period %s", c.Wrapper.Grace)
	}
	return nil
}

// AnalyzerAlgorithms returns the configured algorithms in configuration
// order.
func (c *Config) AnalyzerAlgorithms() ([]analyzer.Algorithm, error) {
	algos := make([]analyzer.Algorithm, len(c.Algorithms))
	for i, s := range c.Algorithms {
		a, err := analyzer.ParseAlgorithm(s)
		if err != nil {
			return nil, err
		}
		algos[i] = a
	}
	return algos, nil
}

func (c *Config) Bands() analyzer.Bands {
	return analyzer.Bands{NearRoot: c.NearRoot, NearLeaf: c.NearLeaf}
}

// AnalyzerOptions converts the configuration into analyzer options. The
// configuration must be valid.
func (c *Config) AnalyzerOptions() (analyzer.Options, error) {
	algos, err := c.AnalyzerAlgorithms()
	if err != nil {
		return analyzer.Options{}, err
	}
	format, err := pattern.ParseFormat(c.PatternFormat)
	if err != nil {
		return analyzer.Options{}, err
	}
	return analyzer.Options{
		ResultsDir:    c.ResultsDir,
		Algorithms:    algos,
		Bands:         c.Bands(),
		PatternFormat: format,
		GzipLogs:      c.GzipLogs,
		Isolate:       c.Isolate,
	}, nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.Config{Level: level, JSON: c.LogJSON}
}
