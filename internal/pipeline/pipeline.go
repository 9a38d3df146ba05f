// Package pipeline orchestrates one buckshift invocation: load cargo
// metadata, build the crate graph, classify dependency edges against the cfg
// snapshots, render BUCK files, and sync them to disk. Non-fatal issues are
// aggregated and reported once at the end.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dukaforge/buckshift/internal/buckfile"
	"github.com/dukaforge/buckshift/internal/cargo"
	"github.com/dukaforge/buckshift/internal/graph"
	"github.com/dukaforge/buckshift/internal/platform"
	"github.com/dukaforge/buckshift/internal/rustc"
	"github.com/dukaforge/buckshift/internal/state"
	"github.com/dukaforge/buckshift/internal/syncer"
	"github.com/dukaforge/buckshift/pkg/types"
)

// aliasesPath is where the inherit_workspace_deps alias rules live.
const aliasesPath = "third-party/rust/BUCK"

// Pipeline carries the long-lived pieces of one invocation.
type Pipeline struct {
	Root       string
	Store      *state.Store
	Snapshots  *rustc.Store
	Config     types.RepoConfig
	Invocation uuid.UUID
}

// Open attaches the workspace state, probes rustc, and loads the repo
// config. Callers must Close when done.
func Open(ctx context.Context, root string) (*Pipeline, error) {
	store := state.New()
	if err := store.Attach(root); err != nil {
		return nil, err
	}

	snaps, err := rustc.NewStore(ctx, store)
	if err != nil {
		store.Detach()
		return nil, err
	}

	config, err := LoadRepoConfig(root)
	if err != nil {
		store.Detach()
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		store.Detach()
		return nil, fmt.Errorf("new invocation id: %w", err)
	}

	return &Pipeline{
		Root:       root,
		Store:      store,
		Snapshots:  snaps,
		Config:     config,
		Invocation: id,
	}, nil
}

// Close releases the state database.
func (p *Pipeline) Close() error {
	if p.Store != nil {
		return p.Store.Detach()
	}
	return nil
}

// Migrate regenerates every BUCK file from the current cargo graph, pruning
// files for crates that left the graph. The workspace lock is held for the
// duration.
func (p *Pipeline) Migrate(ctx context.Context) (*Report, error) {
	release, err := syncer.Lock(p.Root)
	if err != nil {
		return nil, err
	}
	defer release()

	return p.migrate(ctx)
}

// migrate is Migrate without the lock, for callers that already hold it.
func (p *Pipeline) migrate(ctx context.Context) (*Report, error) {
	md, err := cargo.Load(ctx, p.Root)
	if err != nil {
		return nil, err
	}
	return p.regenerate(ctx, md)
}

func (p *Pipeline) regenerate(ctx context.Context, md *cargo.Metadata) (*Report, error) {
	g, err := graph.Build(md)
	if err != nil {
		return nil, err
	}

	mapper, err := p.mapper(ctx)
	if err != nil {
		return nil, err
	}

	checksums, err := cargo.Checksums(p.Root)
	if err != nil {
		return nil, err
	}

	return p.Regenerate(g, mapper, checksums)
}

// mapper warms the snapshot cache for every supported triple, concurrently
// for the misses, and builds the classifier over the full set.
func (p *Pipeline) mapper(ctx context.Context) (*platform.Mapper, error) {
	triples := platform.Triples()
	if err := p.Snapshots.Warm(ctx, triples); err != nil {
		return nil, err
	}

	snaps := make(map[string]rustc.Snapshot, len(triples))
	for _, triple := range triples {
		snap, err := p.Snapshots.Get(ctx, triple)
		if err != nil {
			return nil, err
		}
		snaps[triple] = snap
	}
	return platform.NewMapper(snaps), nil
}

// Regenerate renders and syncs every crate of the graph. It is the testable
// core of Migrate: all external processes are behind the arguments.
func (p *Pipeline) Regenerate(g *graph.Graph, mapper *platform.Mapper, checksums map[string]string) (*Report, error) {
	emitter := buckfile.New(g, mapper, p.Config, checksums)
	sync := syncer.New(p.Root, p.Store)
	report := &Report{Invocation: p.Invocation}

	active := make(map[string]bool)
	for _, c := range g.Crates {
		file, err := emitter.EmitCrate(c)
		if err != nil {
			report.Diagnostics = append(report.Diagnostics, types.Diagnostic{
				Kind:    types.DiagManifest,
				Subject: fmt.Sprintf("%s v%s", c.Name, c.Version),
				Detail:  fmt.Sprintf("rule generation skipped: %v", err),
			})
			continue
		}
		relPath := buckfile.Path(c)
		active[relPath] = true
		report.Results = append(report.Results, sync.SyncFile(relPath, file.Render()))
	}

	if p.Config.InheritWorkspaceDeps {
		active[aliasesPath] = true
		report.Results = append(report.Results,
			sync.SyncFile(aliasesPath, emitter.EmitAliases().Render()))
	}

	pruned, err := sync.Prune(active)
	if err != nil {
		return nil, err
	}
	report.Results = append(report.Results, pruned...)

	report.Diagnostics = append(report.Diagnostics, emitter.Diagnostics()...)
	report.Diagnostics = append(report.Diagnostics, sync.Diagnostics()...)
	return report, nil
}

// Autoremove prunes generated files and baselines for crates that are no
// longer part of the dependency graph, without rewriting current files.
func (p *Pipeline) Autoremove(ctx context.Context) (*Report, error) {
	release, err := syncer.Lock(p.Root)
	if err != nil {
		return nil, err
	}
	defer release()

	md, err := cargo.Load(ctx, p.Root)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(md)
	if err != nil {
		return nil, err
	}

	active := make(map[string]bool)
	for _, c := range g.Crates {
		active[buckfile.Path(c)] = true
	}
	if p.Config.InheritWorkspaceDeps {
		active[aliasesPath] = true
	}

	sync := syncer.New(p.Root, p.Store)
	report := &Report{Invocation: p.Invocation}
	report.Results, err = sync.Prune(active)
	if err != nil {
		return nil, err
	}
	report.Diagnostics = sync.Diagnostics()
	return report, nil
}
