package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/exitpaths/model"
)

var (
	runFlags    specFlags
	summaryFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run [MODE]",
	Short: "Run the demo once in this process",
	Long: "Run the demo once. MODE is an integer from 0 to 7 (see 'exitpaths modes');\n" +
		"a missing or invalid MODE means 0.",
	Args: cobra.MaximumNArgs(1),
	Run:  runCommand,
}

func init() {
	runFlags.register(runCmd, time.Second)
	runCmd.Flags().BoolVar(&summaryFlag, "summary", false, "Print a run summary to stderr when the main thread returns")
}

func runCommand(cmd *cobra.Command, args []string) {
	spec := runFlags.build(cmd)
	if len(args) > 0 {
		mode, ok := model.ParseMode(args[0])
		if !ok {
			log.Warn().Str("mode", args[0]).Msg("Invalid mode, using 0")
		}
		spec.Mode = mode
	}
	if err := spec.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid run spec")
	}
	log.Debug().Int("mode", int(spec.Mode)).Stringer("unit", spec.SleepUnit.Duration).Msg("Starting run")

	code, report := model.Run(spec, model.RunOptions{
		Output:   os.Stdout,
		Color:    !runFlags.noColor,
		ExitFunc: os.Exit,
	})
	if summaryFlag && report != nil {
		fmt.Fprint(os.Stderr, model.FormatReport(report))
	}
	os.Exit(code)
}
