package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rhartert/choicetrace/internal/tuning"
)

func newWrapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "wrap <instance> <instance-info> <cutoff> <cutoff-length> <seed> [-name value]...",
		Short: "Run the solver once for the parameter tuning framework",
		Long: `Wrap runs the solver on a "pattern@target" instance with the candidate
parameters and prints a single "Result of algorithm run" line.

Arguments are passed verbatim by the tuning framework, so flags are not parsed:
set $` + configEnv + ` to use a configuration file.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			return runWrap(cmd, a, args)
		},
	}
}

func runWrap(cmd *cobra.Command, a *app, args []string) error {
	call, err := tuning.ParseArgs(args)
	if err != nil {
		return err
	}

	w := a.cfg.Wrapper
	r := &tuning.Runner{
		Solver:     w.Solver,
		PathPrefix: w.PathPrefix,
		Flags:      w.Flags,
		Grace:      w.Grace,
		Logger:     a.logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := r.Run(ctx, call)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res)
	return err
}
