package cargo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// lockfile mirrors the Cargo.lock TOML layout.
type lockfile struct {
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	Checksum string `toml:"checksum"`
}

// Checksums reads Cargo.lock under workspaceRoot and returns crate sha256
// checksums keyed by "<name>-<version>". Path-sourced packages have no
// checksum and are absent from the map.
func Checksums(workspaceRoot string) (map[string]string, error) {
	raw, err := os.ReadFile(filepath.Join(workspaceRoot, "Cargo.lock"))
	if err != nil {
		return nil, fmt.Errorf("read Cargo.lock: %w", err)
	}

	var lock lockfile
	if err := toml.Unmarshal(raw, &lock); err != nil {
		return nil, fmt.Errorf("parse Cargo.lock: %w", err)
	}

	checksums := make(map[string]string, len(lock.Packages))
	for _, p := range lock.Packages {
		if p.Checksum == "" {
			continue
		}
		checksums[p.Name+"-"+p.Version] = p.Checksum
	}
	return checksums, nil
}
