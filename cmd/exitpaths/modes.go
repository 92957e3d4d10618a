package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timewinder-dev/exitpaths/model"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the termination modes",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(model.FormatModes())
	},
}
