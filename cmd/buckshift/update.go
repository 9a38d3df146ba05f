// Update command: transactional lockfile refresh.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/pipeline"
)

var flagUpdateWorkspace bool

var updateCmd = &cobra.Command{
	Use:   "update [packages...]",
	Short: "Update dependency pins and regenerate BUCK files",
	Long: `Update refreshes Cargo.lock via cargo update, optionally restricted to
the given packages, and regenerates every BUCK file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withPipeline(ctx, func(p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Update(ctx, args, flagUpdateWorkspace)
		})
	},
}

func init() {
	updateCmd.Flags().BoolVar(&flagUpdateWorkspace, "workspace", false, "only update packages in the workspace")
}
