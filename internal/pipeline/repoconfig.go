package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/dukaforge/buckshift/pkg/types"
)

// RepoConfigName is the repository-level configuration file at the Buck2
// root.
const RepoConfigName = "buckshift.toml"

// LoadRepoConfig reads buckshift.toml under root. A missing file yields the
// zero config.
func LoadRepoConfig(root string) (types.RepoConfig, error) {
	var config types.RepoConfig

	raw, err := os.ReadFile(filepath.Join(root, RepoConfigName))
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read %s: %w", RepoConfigName, err)
	}

	if err := toml.Unmarshal(raw, &config); err != nil {
		return config, fmt.Errorf("parse %s: %w", RepoConfigName, err)
	}
	return config, nil
}
