// Command choicetrace supports subgraph isomorphism solver experiments.
//
//	choicetrace analyze   extract choice point statistics from solver logs
//	choicetrace wrap      run the solver for the parameter tuning framework
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/rhartert/choicetrace/internal/config"
	"github.com/rhartert/choicetrace/internal/logging"
)

// configEnv names the environment variable holding the config file path. It
// is the only way to configure commands that do not parse flags.
const configEnv = "CHOICETRACE_CONFIG"

type app struct {
	configFile string
	cpuProfile bool
	memProfile bool
	logLevel   string
	logJSON    bool
	quiet      bool

	cfg     *config.Config
	logger  *slog.Logger
	cpuFile *os.File
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "choicetrace",
		Short:             "Tools for subgraph isomorphism solver experiments",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML configuration file (default $"+configEnv+")")
	flags.BoolVar(&a.cpuProfile, "cpuprof", false, "save pprof CPU profile in cpuprof")
	flags.BoolVar(&a.memProfile, "memprof", false, "save pprof memory profile in memprof")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	flags.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "discard logs")

	root.AddCommand(newAnalyzeCmd(a), newWrapCmd(a))
	return root
}

// setup loads the configuration and starts the logger and the profiler.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configFile
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logJSON {
		cfg.LogJSON = true
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.Logging()
	lc.Quiet = a.quiet
	a.logger = logging.New(os.Stderr, lc)
	slog.SetDefault(a.logger)

	if a.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
		a.cpuFile = f
	}
	return nil
}

func (a *app) stopCPUProfile() {
	if a.cpuFile != nil {
		pprof.StopCPUProfile()
		a.cpuFile.Close()
		a.cpuFile = nil
	}
}

func (a *app) teardown() error {
	a.stopCPUProfile()
	if a.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}
	return nil
}

// run executes the root command with the given arguments. Cobra skips the
// post-run hook of a failed command, so the CPU profile is stopped here.
func (a *app) run(args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		a.stopCPUProfile()
		return err
	}
	return nil
}

func main() {
	if err := (&app{}).run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
