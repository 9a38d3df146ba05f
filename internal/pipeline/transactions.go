package pipeline

import (
	"context"
	"fmt"

	"github.com/dukaforge/buckshift/internal/cargo"
	"github.com/dukaforge/buckshift/internal/syncer"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Add edits the manifest via `cargo add` and regenerates. A failed
// regeneration rolls the manifest edit back; a failed rollback leaves a
// divergence diagnostic so the user knows the manifests disagree.
func (p *Pipeline) Add(ctx context.Context, opts cargo.AddOptions) (*Report, error) {
	return p.transact(ctx, fmt.Sprintf("add %s", opts.Package), func() error {
		return cargo.Add(ctx, p.Root, opts)
	})
}

// Remove edits the manifest via `cargo remove` and regenerates.
func (p *Pipeline) Remove(ctx context.Context, packages []string, dev, build bool) (*Report, error) {
	return p.transact(ctx, "remove", func() error {
		return cargo.Remove(ctx, p.Root, packages, dev, build)
	})
}

// Update refreshes lockfile pins via `cargo update` and regenerates.
func (p *Pipeline) Update(ctx context.Context, packages []string, workspace bool) (*Report, error) {
	return p.transact(ctx, "update", func() error {
		return cargo.Update(ctx, p.Root, packages, workspace)
	})
}

// transact snapshots the manifests, applies the edit, and regenerates, all
// under the workspace lock so a concurrent invocation cannot interleave its
// own edit between the snapshot and a rollback. The snapshot restores the
// previous manifest state when regeneration fails.
func (p *Pipeline) transact(ctx context.Context, verb string, edit func() error) (*Report, error) {
	release, err := syncer.Lock(p.Root)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := cargo.SnapshotManifests(p.Root)
	if err != nil {
		return nil, err
	}

	if err := edit(); err != nil {
		return nil, err
	}

	report, err := p.migrate(ctx)
	if err == nil {
		return report, nil
	}

	if rerr := snap.Restore(); rerr != nil {
		// Rollback failed; surface the divergence instead of hiding it.
		return &Report{
			Invocation: p.Invocation,
			Diagnostics: []types.Diagnostic{{
				Kind:    types.DiagManifest,
				Subject: verb,
				Detail: fmt.Sprintf(
					"regeneration failed (%v) and manifest rollback failed (%v); Cargo.toml and BUCK files may diverge",
					err, rerr),
			}},
		}, err
	}
	return nil, fmt.Errorf("%s: regeneration failed, manifest restored: %w", verb, err)
}
