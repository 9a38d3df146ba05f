// Autoremove command: prune stale generated files.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/pipeline"
)

var autoremoveCmd = &cobra.Command{
	Use:   "autoremove",
	Short: "Prune BUCK files for crates no longer in the graph",
	Long: `Autoremove deletes generated BUCK files and their baselines for crates
that left the dependency graph, without rewriting current files. Hand-edited
stale files are kept with a warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withPipeline(ctx, func(p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Autoremove(ctx)
		})
	},
}
