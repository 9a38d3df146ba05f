package types

import "errors"

// Standard error values. Non-fatal conditions (predicate issues, conflicts)
// are additionally surfaced as diagnostics so a run reports everything it
// skipped or assumed in one place.
var (
	// ErrMetadata wraps failures retrieving or parsing cargo metadata.
	// Fatal: no partial graph is usable.
	ErrMetadata = errors.New("cargo metadata failed")

	// ErrConflict means the on-disk generated region diverged from the
	// stored baseline. Fatal for that one file only.
	ErrConflict = errors.New("generated region was edited by hand")

	// ErrNotAttached is returned by state-store operations before Open.
	ErrNotAttached = errors.New("state store not attached")

	// ErrSnapshotMissing means no cfg snapshot is cached for a triple.
	ErrSnapshotMissing = errors.New("cfg snapshot not cached")

	// ErrBaselineMissing means no baseline is stored for a file.
	ErrBaselineMissing = errors.New("no baseline for file")

	// ErrLocked means another buckshift process holds the workspace lock.
	ErrLocked = errors.New("workspace is locked by another process")

	// ErrBuck2NotFound means the buck2 executable could not be resolved
	// from the config override or PATH.
	ErrBuck2NotFound = errors.New("buck2 executable not found")

	// ErrNoLibTarget means a dependency package has no usable library
	// target to point a label at.
	ErrNoLibTarget = errors.New("dependency has no library target")
)
