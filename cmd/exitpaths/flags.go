package main

import (
	"time"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/exitpaths/model"
)

// specFlags are the flags shared by every command that builds a RunSpec.
// Each command gets its own set so their defaults don't collide.
type specFlags struct {
	config    string
	unit      time.Duration
	semaphore string
	noColor   bool
}

func (f *specFlags) register(cmd *cobra.Command, defaultUnit time.Duration) {
	cmd.Flags().StringVar(&f.config, "config", "", "TOML run spec to load")
	cmd.Flags().DurationVar(&f.unit, "unit", defaultUnit, "Length of one sleep unit")
	cmd.Flags().StringVar(&f.semaphore, "semaphore", "channel", "Semaphore implementation (channel, weighted)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable coloured output")
}

// build loads the spec file, if any, and lays the flags over it. Flags only
// win over the file when they were set explicitly.
func (f *specFlags) build(cmd *cobra.Command) *model.RunSpec {
	spec := model.DefaultSpec()
	if f.config != "" {
		var err error
		spec, err = model.LoadSpecFromFile(f.config)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load run spec")
		}
	}
	if f.config == "" || cmd.Flags().Changed("unit") {
		spec.SleepUnit.Duration = f.unit
	}
	if cmd.Flags().Changed("semaphore") {
		spec.Semaphore.Kind = f.semaphore
	}
	if f.noColor {
		color.Disable()
	}
	return spec
}
