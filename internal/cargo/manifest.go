package cargo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// AddOptions controls a dependency add transaction.
type AddOptions struct {
	Package  string // name or name@version
	Features []string
	Rename   string
	Dev      bool
	Build    bool
}

// Add runs `cargo add` in dir, editing Cargo.toml and refreshing the
// lockfile. The caller snapshots the manifests beforehand so a failed
// regeneration can roll the edit back.
func Add(ctx context.Context, dir string, opts AddOptions) error {
	args := []string{"add", opts.Package}
	for _, f := range opts.Features {
		args = append(args, "--features", f)
	}
	if opts.Rename != "" {
		args = append(args, "--rename", opts.Rename)
	}
	if opts.Dev {
		args = append(args, "--dev")
	}
	if opts.Build {
		args = append(args, "--build")
	}
	return runCargo(ctx, dir, args...)
}

// Remove runs `cargo remove` in dir for the given packages.
func Remove(ctx context.Context, dir string, packages []string, dev, build bool) error {
	args := append([]string{"remove"}, packages...)
	if dev {
		args = append(args, "--dev")
	}
	if build {
		args = append(args, "--build")
	}
	return runCargo(ctx, dir, args...)
}

// Update runs `cargo update` in dir, optionally restricted to packages.
func Update(ctx context.Context, dir string, packages []string, workspace bool) error {
	args := []string{"update"}
	if workspace {
		args = append(args, "--workspace")
	}
	args = append(args, packages...)
	return runCargo(ctx, dir, args...)
}

func runCargo(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cargo %s: %w", args[0], err)
	}
	return nil
}

// ManifestSnapshot captures Cargo.toml and Cargo.lock so a dependency
// transaction can restore them when regeneration fails.
type ManifestSnapshot struct {
	dir   string
	files map[string][]byte // name → content; nil entry means absent
}

// SnapshotManifests reads the manifest files in dir that a transaction may
// touch.
func SnapshotManifests(dir string) (*ManifestSnapshot, error) {
	snap := &ManifestSnapshot{dir: dir, files: make(map[string][]byte)}
	for _, name := range []string{"Cargo.toml", "Cargo.lock"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				snap.files[name] = nil
				continue
			}
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		snap.files[name] = raw
	}
	return snap, nil
}

// Restore writes the captured manifest contents back, removing files that
// did not exist at snapshot time.
func (s *ManifestSnapshot) Restore() error {
	for name, raw := range s.files {
		path := filepath.Join(s.dir, name)
		if raw == nil {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("restore %s: %w", name, err)
			}
			continue
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	return nil
}
