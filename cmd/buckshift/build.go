// Build command: delegate compilation to buck2.
package main

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [targets...]",
	Short: "Build targets with buck2",
	Long:  `Build invokes buck2 build for the given target patterns (default //...).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := buck2Client(ctx)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			args = []string{"//..."}
		}
		return client.Build(ctx, args...)
	},
}
