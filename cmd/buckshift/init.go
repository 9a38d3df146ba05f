// Init command: scaffold the buckshift workspace state.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dukaforge/buckshift/internal/console"
	"github.com/dukaforge/buckshift/internal/pipeline"
	"github.com/dukaforge/buckshift/internal/state"
)

// defaultRepoConfigTOML is written to buckshift.toml on init when the file
// does not already exist.
const defaultRepoConfigTOML = `# Buckshift repository configuration

# Suppress rust_test rule generation
# ignore_tests = false

# Route root-package deps through //third-party/rust alias rules
# inherit_workspace_deps = false
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the buckshift workspace",
	Long: `Init creates the workspace state database and a default buckshift.toml
at the workspace root. Run migrate afterwards to generate BUCK files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(cmd.Context())
		if err != nil {
			return err
		}

		store := state.New()
		if err := store.Attach(root); err != nil {
			return fmt.Errorf("attach state: %w", err)
		}
		if err := store.Detach(); err != nil {
			return err
		}
		console.Status("Creating", "workspace state in %s", root)

		path := filepath.Join(root, pipeline.RepoConfigName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(defaultRepoConfigTOML), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", pipeline.RepoConfigName, err)
			}
			console.Status("Creating", "%s", pipeline.RepoConfigName)
		} else if err != nil {
			return err
		}

		console.Note("run `buckshift migrate` to generate BUCK files")
		return nil
	},
}
