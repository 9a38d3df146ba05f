package pipeline

import (
	"github.com/google/uuid"

	"github.com/dukaforge/buckshift/internal/console"
	"github.com/dukaforge/buckshift/internal/syncer"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Report is the aggregated outcome of one invocation: per-file results plus
// the diagnostics collected along the way.
type Report struct {
	Invocation  uuid.UUID
	Results     []syncer.Result
	Diagnostics []types.Diagnostic
}

// Counts tallies results per outcome.
func (r *Report) Counts() (unchanged, applied, conflicts, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case syncer.Unchanged:
			unchanged++
		case syncer.Applied:
			applied++
		case syncer.Conflict:
			conflicts++
		default:
			failed++
		}
	}
	return
}

// HasConflicts reports whether any file was skipped or failed.
func (r *Report) HasConflicts() bool {
	_, _, conflicts, failed := r.Counts()
	return conflicts > 0 || failed > 0
}

// Print writes the per-file status lines and then the aggregated
// diagnostics, once, at the end.
func (r *Report) Print() {
	for _, res := range r.Results {
		switch res.Outcome {
		case syncer.Applied:
			console.Status("Flushing", "%s", res.Path)
		case syncer.Conflict:
			console.Status("Skipping", "%s", res.Path)
		case syncer.Failed:
			console.Status("Failing", "%s", res.Path)
		}
	}

	unchanged, applied, conflicts, failed := r.Counts()
	console.Status("Finished", "%d applied, %d unchanged, %d conflicts, %d failed [%s]",
		applied, unchanged, conflicts, failed, r.Invocation)

	for _, d := range r.Diagnostics {
		switch d.Kind {
		case types.DiagOmitted:
			console.Note("%s: %s", d.Subject, d.Detail)
		case types.DiagConflict, types.DiagIO, types.DiagManifest:
			console.Warn("%s: %s", d.Subject, d.Detail)
		default:
			console.Warn("%s: %s", d.Subject, d.Detail)
		}
	}
}
