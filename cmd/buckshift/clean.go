// Clean command: delegate artifact cleanup to buck2.
package main

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove buck2 build artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := buck2Client(ctx)
		if err != nil {
			return err
		}
		return client.Clean(ctx)
	},
}
