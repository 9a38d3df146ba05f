package types

import "errors"

// Config holds user-level settings loaded from config.yaml in the buckshift
// config directory.
type Config struct {
	// Buck2Binary overrides the buck2 executable path. Empty means search
	// the process PATH.
	Buck2Binary string `json:"buck2_binary" yaml:"buck2_binary"`
}

// RepoConfig holds repository-level settings from buckshift.toml at the
// Buck2 root. The zero value is a usable default.
type RepoConfig struct {
	// IgnoreTests suppresses rust_test rule generation.
	IgnoreTests bool `toml:"ignore_tests"`
	// InheritWorkspaceDeps makes the root package depend on third-party
	// crates through //third-party/rust alias rules.
	InheritWorkspaceDeps bool `toml:"inherit_workspace_deps"`
}

// Config validation errors.
var (
	ErrBinaryPathInvalid = errors.New("buck2_binary must be a file path or bare command name")
)

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	for _, r := range c.Buck2Binary {
		if r == '\n' || r == '\x00' {
			return ErrBinaryPathInvalid
		}
	}
	return nil
}
