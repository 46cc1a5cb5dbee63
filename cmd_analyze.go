package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rhartert/choicetrace/internal/analyzer"
	"github.com/rhartert/choicetrace/internal/manifest"
)

type analyzeFlags struct {
	resultsDir    string
	instancesFile string
	isolate       bool
	gzipLogs      bool
	patternFormat string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [flags] [instances-file]",
		Short: "Extract choice point statistics from solver logs",
		Long: `Analyze reads the solver log of every algorithm on every instance of the
manifest and writes one record per decision in <results-dir>/<algorithm>.choices.data.
Counts of the decisions taken near the root and near the leaves of the search
tree are printed once all the instances are processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.instancesFile = args[0]
			}
			return runAnalyze(cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.resultsDir, "results", "", "results directory (overrides config)")
	flags.StringVar(&f.instancesFile, "instances", "", "instance manifest (overrides config)")
	flags.BoolVar(&f.isolate, "isolate", false, "log and skip runs that cannot be analyzed instead of stopping")
	flags.BoolVar(&f.gzipLogs, "gzip", false, "read gzipped solver logs")
	flags.StringVar(&f.patternFormat, "format", "", "pattern file format: lad or dimacs (overrides config)")
	return cmd
}

// apply overrides the configuration with the flags set on the command
// line.
func (f *analyzeFlags) apply(cmd *cobra.Command, a *app) error {
	cfg := a.cfg
	if f.resultsDir != "" {
		cfg.ResultsDir = f.resultsDir
	}
	if f.instancesFile != "" {
		cfg.InstancesFile = f.instancesFile
	}
	if cmd.Flags().Changed("isolate") {
		cfg.Isolate = f.isolate
	}
	if cmd.Flags().Changed("gzip") {
		cfg.GzipLogs = f.gzipLogs
	}
	if f.patternFormat != "" {
		cfg.PatternFormat = f.patternFormat
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, a *app, f *analyzeFlags) error {
	if err := f.apply(cmd, a); err != nil {
		return err
	}
	opts, err := a.cfg.AnalyzerOptions()
	if err != nil {
		return err
	}
	opts.Logger = a.logger

	// Results files are created before anything is parsed so that every
	// algorithm has a file, even an empty one.
	an, err := analyzer.Create(opts)
	if err != nil {
		return fmt.Errorf("could not create results files: %w", err)
	}
	defer an.Close()

	entries, err := manifest.ParseFile(a.cfg.InstancesFile)
	if err != nil {
		return err
	}
	a.logger.Info("analyzing runs",
		"instances", len(entries),
		"algorithms", len(opts.Algorithms),
		"results", opts.ResultsDir)

	if err := an.Run(entries); err != nil {
		return err
	}
	if err := an.Summary(cmd.OutOrStdout()); err != nil {
		return err
	}
	return an.Close()
}
