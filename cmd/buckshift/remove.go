// Remove command: transactional dependency removal.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/pipeline"
)

var (
	flagRemoveDev   bool
	flagRemoveBuild bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <package>...",
	Short: "Remove dependencies and regenerate BUCK files",
	Long: `Remove edits Cargo.toml via cargo remove and regenerates every BUCK
file, pruning rules for crates that left the graph. A failed regeneration
rolls the manifest edit back.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withPipeline(ctx, func(p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Remove(ctx, args, flagRemoveDev, flagRemoveBuild)
		})
	},
}

func init() {
	removeCmd.Flags().BoolVar(&flagRemoveDev, "dev", false, "remove from dev dependencies")
	removeCmd.Flags().BoolVar(&flagRemoveBuild, "build", false, "remove from build dependencies")
}
