package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/recast/api"
	"github.com/agentic-research/recast/internal/typeres"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and inspect sqlite type indexes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "build [classpath.json] [output.db]",
		Short: "Build a sqlite type index from a JSON classpath description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, output := args[0], args[1]
			cp, err := api.LoadClasspath(source)
			if err != nil {
				return err
			}
			if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("replace %s: %w", output, err)
			}
			start := time.Now()
			if err := typeres.BuildSQLiteIndex(output, cp); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d types into %s in %v.\n",
				len(cp.Types), output, time.Since(start).Round(time.Millisecond))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "subtypes [index.db] [type]",
		Short: "List the types that directly extend or implement a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := typeres.OpenSQLiteIndex(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()
			subs, err := ix.Subtypes(args[1])
			if err != nil {
				return err
			}
			for _, s := range subs {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	})
	return cmd
}
