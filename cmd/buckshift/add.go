// Add command: transactional dependency addition.
package main

import (
	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/cargo"
	"github.com/dukaforge/buckshift/internal/pipeline"
)

var addOpts cargo.AddOptions

var addCmd = &cobra.Command{
	Use:   "add <package>[@version]",
	Short: "Add a dependency and regenerate BUCK files",
	Long: `Add edits Cargo.toml via cargo add and regenerates every BUCK file. A
failed regeneration rolls the manifest edit back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		addOpts.Package = args[0]
		return withPipeline(ctx, func(p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Add(ctx, addOpts)
		})
	},
}

func init() {
	addCmd.Flags().StringSliceVar(&addOpts.Features, "features", nil, "features to activate")
	addCmd.Flags().StringVar(&addOpts.Rename, "rename", "", "import the dependency under a different name")
	addCmd.Flags().BoolVar(&addOpts.Dev, "dev", false, "add as a dev dependency")
	addCmd.Flags().BoolVar(&addOpts.Build, "build", false, "add as a build dependency")
}
