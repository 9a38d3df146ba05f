// Root command for the buckshift CLI.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/buck2"
	"github.com/dukaforge/buckshift/internal/paths"
	"github.com/dukaforge/buckshift/pkg/types"
)

const version = "0.1.0"

// Global flag values.
var (
	flagConfigDir string
	flagRoot      string
)

// userConfig holds the user-level settings loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var userConfig types.Config

var rootCmd = &cobra.Command{
	Use:     "buckshift",
	Short:   "Buckshift migrates Cargo build rules to Buck2",
	Version: version,
	Long: `Buckshift translates a resolved Cargo dependency graph into Buck2
build-rule definitions, keeping generated regions in sync across repeated
invocations without destroying user edits.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		userConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "workspace root (default: buck2 project root, falling back to CWD)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(autoremoveCmd)
}

// resolveRoot returns the workspace root following the precedence chain:
// --root flag > buck2 project root > current directory.
func resolveRoot(ctx context.Context) (string, error) {
	if flagRoot != "" {
		return flagRoot, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	bin, err := buck2.Resolve(userConfig.Buck2Binary)
	if err != nil {
		return cwd, nil
	}
	root, err := buck2.NewClient(bin, cwd).Root(ctx)
	if err != nil {
		return cwd, nil
	}
	return root, nil
}
