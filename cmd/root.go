// Package cmd implements the recast command line.
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	var noColor bool
	root := &cobra.Command{
		Use:   "recast",
		Short: "Recast: mechanical, type-aware source rewriting",
		Long: `Recast applies configured rewrite recipes to Java and Go sources. Only the
matching fragments change; every other byte, comments and whitespace
included, is printed back as it was read.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	root.AddCommand(newRunCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newBeansCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
