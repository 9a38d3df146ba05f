package types

import "fmt"

// DiagnosticKind classifies a non-fatal issue recorded during a run.
type DiagnosticKind string

// Diagnostic kinds.
const (
	// DiagPredicate marks an unsupported or unknown cfg predicate that
	// was treated as unconditional (fail-open).
	DiagPredicate DiagnosticKind = "predicate"
	// DiagOmitted marks a dependency that matched no supported platform
	// and was left out of the generated rules.
	DiagOmitted DiagnosticKind = "omitted"
	// DiagConflict marks conflicting state left unresolved: a generated
	// region edited by hand, or a rename alias pointing at two different
	// targets.
	DiagConflict DiagnosticKind = "conflict"
	// DiagIO marks a file whose update failed; its prior state is intact.
	DiagIO DiagnosticKind = "io"
	// DiagManifest marks a manifest edit left in place after a failed
	// regeneration, so the user knows the two manifests may diverge.
	DiagManifest DiagnosticKind = "manifest"
)

// Diagnostic is one non-fatal issue. Diagnostics are aggregated and reported
// once at the end of an invocation, never interleaved with progress output.
type Diagnostic struct {
	Kind    DiagnosticKind
	Subject string // predicate text, file path, or dependency name
	Detail  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Subject, d.Detail)
}
