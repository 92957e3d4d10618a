package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/exitpaths/model"
)

var (
	sweepFlags  specFlags
	sweepMode   int
	sweepRuns   int
	stressFlag  bool
	verboseFlag bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the demo many times in simulated processes and group the outcomes",
	Args:  cobra.NoArgs,
	Run:   sweepCommand,
}

func init() {
	sweepFlags.register(sweepCmd, 10*time.Millisecond)
	sweepCmd.Flags().IntVar(&sweepMode, "mode", 0, "Mode to sweep (0-7)")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 20, "Number of runs")
	sweepCmd.Flags().BoolVar(&stressFlag, "stress", false, "Yield to the scheduler inside every increment")
	sweepCmd.Flags().BoolVar(&verboseFlag, "verbose", false, "Print every run's diagnostic lines to stdout")
}

func sweepCommand(cmd *cobra.Command, args []string) {
	spec := sweepFlags.build(cmd)
	if cmd.Flags().Changed("mode") || sweepFlags.config == "" {
		spec.Mode = model.Mode(sweepMode)
	}
	if err := spec.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid run spec")
	}
	if sweepRuns < 1 {
		log.Fatal().Int("runs", sweepRuns).Msg("Need at least one run")
	}

	opts := model.RunOptions{Color: !sweepFlags.noColor}
	if verboseFlag {
		opts.Output = os.Stdout
	}
	if stressFlag {
		opts.CounterYield = runtime.Gosched
	}

	fmt.Fprintln(os.Stderr, color.Cyan.Sprintf("Sweeping mode %d (%s), %d runs...", int(spec.Mode), spec.Mode, sweepRuns))
	result, err := model.Sweep(spec, sweepRuns, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Error during sweep")
	}
	outcomes, err := result.Outcomes()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't read back outcomes")
	}
	fmt.Fprint(os.Stderr, model.FormatSweep(result, outcomes))
}
