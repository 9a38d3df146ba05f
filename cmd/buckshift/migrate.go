// Migrate command: full regeneration of BUCK files from the Cargo graph.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/pipeline"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Regenerate all BUCK files from the Cargo dependency graph",
	Long: `Migrate loads cargo metadata, classifies every dependency edge against
the supported target platforms, and rewrites the generated region of every
BUCK file. Files whose generated region was edited by hand are skipped with a
warning; stale files for crates that left the graph are pruned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withPipeline(ctx, func(p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Migrate(ctx)
		})
	},
}
