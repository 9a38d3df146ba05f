// Test command: delegate test runs to buck2.
package main

import (
	"github.com/spf13/cobra"
)

var flagSkipCross bool

var testCmd = &cobra.Command{
	Use:   "test [targets...]",
	Short: "Run tests with buck2",
	Long: `Test invokes buck2 test for the given target patterns (default //...).

With --skip-cross the //platforms:cross modifier is enabled, which marks
generated rust_test rules as incompatible so cross-compiled test targets are
skipped instead of run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := buck2Client(ctx)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			args = []string{"//..."}
		}
		if flagSkipCross {
			args = append(args, "--modifier", "//platforms:cross")
		}
		return client.Test(ctx, args...)
	},
}

func init() {
	testCmd.Flags().BoolVar(&flagSkipCross, "skip-cross", false, "skip tests that would cross-compile")
}
