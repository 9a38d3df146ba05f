// Package syncer reconciles rendered BUCK text with the files on disk. Each
// file carries a marked generated region; everything outside the markers
// belongs to the user. A stored baseline fingerprint of the last region this
// tool wrote detects hand edits, which make the file a conflict rather than
// something to overwrite.
package syncer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukaforge/buckshift/internal/state"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Generated-region sentinels. Text between them is rewritten on every sync;
// text outside them is never touched.
const (
	MarkerBegin = "# buckshift-begin: generated rules, do not edit this region"
	MarkerEnd   = "# buckshift-end"
)

// Outcome is the per-file result of a sync.
type Outcome int

const (
	// Unchanged means the on-disk region already matches.
	Unchanged Outcome = iota
	// Applied means the file was written (or removed, for prunes) and the
	// baseline updated.
	Applied
	// Conflict means a hand edit was detected; the file was left alone.
	Conflict
	// Failed means an I/O error stopped the update; the file's prior state
	// is intact.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Applied:
		return "applied"
	case Conflict:
		return "conflict"
	default:
		return "failed"
	}
}

// Result is the outcome of syncing one file.
type Result struct {
	Path    string
	Outcome Outcome
}

// Syncer applies generated regions under one Buck2 root. Failures are
// isolated per file: a conflict or error on one path never blocks the rest.
type Syncer struct {
	root  string
	store *state.Store
	diags []types.Diagnostic
}

// New builds a syncer rooted at the Buck2 root, using the attached store for
// baselines.
func New(root string, store *state.Store) *Syncer {
	return &Syncer{root: root, store: store}
}

// Diagnostics returns the issues recorded so far.
func (s *Syncer) Diagnostics() []types.Diagnostic { return s.diags }

func (s *Syncer) report(kind types.DiagnosticKind, subject, detail string) {
	s.diags = append(s.diags, types.Diagnostic{Kind: kind, Subject: subject, Detail: detail})
}

// Fingerprint returns the content hash used for baseline comparison.
func Fingerprint(region string) string {
	sum := sha256.Sum256([]byte(region))
	return hex.EncodeToString(sum[:])
}

func wrap(region string) string {
	return MarkerBegin + "\n" + region + MarkerEnd + "\n"
}

// splitRegion separates a file into the text before the markers, the current
// generated region, and the text after.
func splitRegion(content string) (prefix, region, suffix string, ok bool) {
	begin := strings.Index(content, MarkerBegin)
	if begin < 0 {
		return "", "", "", false
	}
	afterBegin := begin + len(MarkerBegin)
	if afterBegin < len(content) && content[afterBegin] == '\n' {
		afterBegin++
	}
	end := strings.Index(content[afterBegin:], MarkerEnd)
	if end < 0 {
		return "", "", "", false
	}
	end += afterBegin
	afterEnd := end + len(MarkerEnd)
	if afterEnd < len(content) && content[afterEnd] == '\n' {
		afterEnd++
	}
	return content[:begin], content[afterBegin:end], content[afterEnd:], true
}

// SyncFile reconciles one file's generated region with the rendered text.
// relPath is "/"-separated and relative to the Buck2 root.
func (s *Syncer) SyncFile(relPath, region string) Result {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))

	raw, err := os.ReadFile(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s.create(relPath, abs, region)
	case err != nil:
		s.report(types.DiagIO, relPath, fmt.Sprintf("read failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}

	prefix, current, suffix, ok := splitRegion(string(raw))
	if !ok {
		s.report(types.DiagConflict, relPath,
			"existing file has no generated region markers, leaving it alone")
		return Result{Path: relPath, Outcome: Conflict}
	}

	if current == region {
		// Adopt the region as baseline when none is stored, and refresh a
		// stale fingerprint left by a hand edit that happens to match the
		// new render. The on-disk text is exactly what this run would
		// write, so it counts as ours either way.
		baseline, err := s.store.GetBaseline(relPath)
		if errors.Is(err, types.ErrBaselineMissing) ||
			(err == nil && baseline.Fingerprint != Fingerprint(region)) {
			s.putBaseline(relPath, region)
		}
		return Result{Path: relPath, Outcome: Unchanged}
	}

	baseline, err := s.store.GetBaseline(relPath)
	if errors.Is(err, types.ErrBaselineMissing) {
		s.report(types.DiagConflict, relPath,
			"generated region differs but no baseline is recorded, leaving it alone")
		return Result{Path: relPath, Outcome: Conflict}
	}
	if err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("baseline lookup failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}

	if Fingerprint(current) != baseline.Fingerprint {
		s.report(types.DiagConflict, relPath,
			"generated region was edited by hand, leaving it alone")
		return Result{Path: relPath, Outcome: Conflict}
	}

	if err := atomicWrite(abs, prefix+wrap(region)+suffix); err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("write failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}
	if !s.putBaseline(relPath, region) {
		return Result{Path: relPath, Outcome: Failed}
	}
	return Result{Path: relPath, Outcome: Applied}
}

func (s *Syncer) create(relPath, abs, region string) Result {
	if err := atomicWrite(abs, wrap(region)); err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("write failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}
	if !s.putBaseline(relPath, region) {
		return Result{Path: relPath, Outcome: Failed}
	}
	return Result{Path: relPath, Outcome: Applied}
}

func (s *Syncer) putBaseline(relPath, region string) bool {
	err := s.store.PutBaseline(state.Baseline{
		Path:        relPath,
		Fingerprint: Fingerprint(region),
		Content:     region,
	})
	if err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("baseline update failed: %v", err))
		return false
	}
	return true
}

// Prune removes generated files whose paths are no longer produced by the
// current graph. A file whose region was hand-edited is left in place with a
// conflict diagnostic; its baseline is kept so the conflict stays visible.
func (s *Syncer) Prune(active map[string]bool) ([]Result, error) {
	paths, err := s.store.ListBaselinePaths()
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}

	var results []Result
	for _, relPath := range paths {
		if active[relPath] {
			continue
		}
		results = append(results, s.pruneOne(relPath))
	}
	return results, nil
}

func (s *Syncer) pruneOne(relPath string) Result {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))

	raw, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		// Already gone; just forget the baseline.
		if err := s.store.DeleteBaseline(relPath); err != nil {
			s.report(types.DiagIO, relPath, fmt.Sprintf("baseline delete failed: %v", err))
			return Result{Path: relPath, Outcome: Failed}
		}
		return Result{Path: relPath, Outcome: Unchanged}
	}
	if err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("read failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}

	baseline, berr := s.store.GetBaseline(relPath)
	_, current, _, ok := splitRegion(string(raw))
	if !ok || berr != nil || Fingerprint(current) != baseline.Fingerprint {
		s.report(types.DiagConflict, relPath,
			"stale generated file was edited by hand, leaving it alone")
		return Result{Path: relPath, Outcome: Conflict}
	}

	if err := os.Remove(abs); err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("remove failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}
	s.removeEmptyParents(filepath.Dir(abs))
	if err := s.store.DeleteBaseline(relPath); err != nil {
		s.report(types.DiagIO, relPath, fmt.Sprintf("baseline delete failed: %v", err))
		return Result{Path: relPath, Outcome: Failed}
	}
	return Result{Path: relPath, Outcome: Applied}
}

// removeEmptyParents deletes now-empty directories left behind by a prune,
// stopping at the Buck2 root.
func (s *Syncer) removeEmptyParents(dir string) {
	root := filepath.Clean(s.root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// atomicWrite writes content to path via a temp file in the same directory
// plus rename, so readers never observe a partial file.
func atomicWrite(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".buckshift-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
