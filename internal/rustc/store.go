package rustc

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/dukaforge/buckshift/internal/state"
	"github.com/dukaforge/buckshift/pkg/types"
)

// runner executes rustc and returns its stdout. Overridable in tests.
type runner func(ctx context.Context, args ...string) ([]byte, error)

func runRustc(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "rustc", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("rustc %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Store hands out cfg snapshots per triple, consulting the workspace state
// database first and invoking rustc only on cache misses. Snapshots are
// immutable once loaded and safely shared read-only for the rest of the
// pipeline.
type Store struct {
	states  *state.Store
	version string
	run     runner

	mu    sync.Mutex
	cache map[string]Snapshot
}

// NewStore creates a snapshot store backed by the given state database.
// The rustc version is probed once so cache entries invalidate on compiler
// upgrades.
func NewStore(ctx context.Context, states *state.Store) (*Store, error) {
	s := &Store{states: states, run: runRustc, cache: make(map[string]Snapshot)}
	out, err := s.run(ctx, "--version")
	if err != nil {
		return nil, fmt.Errorf("probe rustc version: %w", err)
	}
	s.version = strings.TrimSpace(string(out))
	return s, nil
}

// newTestStore builds a store with a fake runner; used by tests here and in
// the platform package.
func newTestStore(states *state.Store, version string, run runner) *Store {
	return &Store{states: states, version: version, run: run, cache: make(map[string]Snapshot)}
}

// Version returns the probed rustc version line.
func (s *Store) Version() string { return s.version }

// Get returns the snapshot for a triple, fetching and caching it if needed.
func (s *Store) Get(ctx context.Context, triple string) (Snapshot, error) {
	s.mu.Lock()
	if snap, ok := s.cache[triple]; ok {
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	snap, err := s.load(ctx, triple)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.cache[triple] = snap
	s.mu.Unlock()
	return snap, nil
}

func (s *Store) load(ctx context.Context, triple string) (Snapshot, error) {
	facts, err := s.states.GetSnapshot(triple, s.version)
	if err == nil {
		return NewSnapshot(facts), nil
	}
	if !errors.Is(err, types.ErrSnapshotMissing) {
		return Snapshot{}, err
	}

	out, err := s.run(ctx, "--print=cfg", "--target", triple)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dump cfg for %s: %w", triple, err)
	}
	snap := ParseCfgDump(string(out))
	if err := s.states.PutSnapshot(triple, s.version, snap.Facts()); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Warm fetches the snapshots for all triples, fanning out the uncached
// dumps concurrently and joining before returning. The triples are mutually
// independent, so the first error wins and the rest are discarded.
func (s *Store) Warm(ctx context.Context, triples []string) error {
	var wg sync.WaitGroup
	errs := make([]error, len(triples))
	for i, triple := range triples {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Get(ctx, triple)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
