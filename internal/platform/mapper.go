package platform

import (
	"fmt"
	"strings"

	"github.com/dukaforge/buckshift/internal/cfgexpr"
	"github.com/dukaforge/buckshift/internal/rustc"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Mapper classifies edges against a fixed set of snapshots. Classification
// is a pure function of the predicate and the snapshots; triple evaluation
// order never changes the result.
type Mapper struct {
	snapshots map[string]rustc.Snapshot
}

// NewMapper builds a mapper over the given triple → snapshot map. The map
// should cover Triples(); missing triples simply never match.
func NewMapper(snapshots map[string]rustc.Snapshot) *Mapper {
	return &Mapper{snapshots: snapshots}
}

// Classification is the outcome of classifying one predicate.
type Classification struct {
	// Platforms is nil for unconditional predicates, otherwise a
	// non-empty proper subset of the supported systems.
	Platforms types.OSSet
	// Dropped means the predicate matches no supported platform; the
	// edge is omitted from generated rules.
	Dropped bool
}

// Classify evaluates a raw predicate against every supported triple.
//
// An empty predicate is unconditional. Malformed predicates and predicates
// over keys absent from every snapshot are fail-open: treated as
// unconditional with a diagnostic, since that preserves buildability.
// A predicate that is understood but satisfies no supported platform drops
// the edge, also with a diagnostic.
func (m *Mapper) Classify(predicate string) (Classification, *types.Diagnostic) {
	if predicate == "" {
		return Classification{}, nil
	}

	if !strings.HasPrefix(strings.TrimSpace(predicate), "cfg(") {
		return m.classifyTriple(predicate)
	}

	expr, err := cfgexpr.Parse(predicate)
	if err != nil {
		return Classification{}, &types.Diagnostic{
			Kind:    types.DiagPredicate,
			Subject: predicate,
			Detail:  fmt.Sprintf("unsupported predicate, assuming all platforms: %v", err),
		}
	}

	if key, ok := m.unknownKey(expr); ok {
		return Classification{}, &types.Diagnostic{
			Kind:    types.DiagPredicate,
			Subject: predicate,
			Detail:  fmt.Sprintf("cfg key %q is unknown on every supported target, assuming all platforms", key),
		}
	}

	set := types.NewOSSet()
	for _, target := range SupportedTargets {
		snap, ok := m.snapshots[target.Triple]
		if !ok {
			continue
		}
		if expr.Eval(snap) {
			set.Add(target.OS)
		}
	}
	return m.reduce(set, predicate)
}

// classifyTriple handles bare-triple predicates like `x86_64-pc-windows-gnu`.
func (m *Mapper) classifyTriple(predicate string) (Classification, *types.Diagnostic) {
	triple := strings.TrimSpace(predicate)
	set := types.NewOSSet()
	for _, target := range SupportedTargets {
		if target.Triple == triple {
			set.Add(target.OS)
		}
	}
	return m.reduce(set, predicate)
}

func (m *Mapper) reduce(set types.OSSet, predicate string) (Classification, *types.Diagnostic) {
	switch {
	case len(set) == 0:
		return Classification{Dropped: true}, &types.Diagnostic{
			Kind:    types.DiagOmitted,
			Subject: predicate,
			Detail:  "matches no supported platform, dependency omitted",
		}
	case set.IsFull():
		// Behaves identically to an unconditional dependency, so it
		// belongs in the plain deps list.
		return Classification{}, nil
	default:
		return Classification{Platforms: set}, nil
	}
}

// unknownKey returns a cfg key referenced by the expression that no snapshot
// knows about, if any. Keys with known names but unmatched values are not
// unknown; those legitimately evaluate to false.
func (m *Mapper) unknownKey(expr cfgexpr.Expr) (string, bool) {
	for _, atom := range cfgexpr.Atoms(expr) {
		known := false
		for _, snap := range m.snapshots {
			if snap.Has(atom.Key) {
				known = true
				break
			}
		}
		if !known {
			return atom.Key, true
		}
	}
	return "", false
}

// ClassifyEdge classifies a dependency edge, naming the dependency in any
// diagnostic.
func (m *Mapper) ClassifyEdge(edge types.DependencyEdge) (types.ClassifiedEdge, bool, *types.Diagnostic) {
	c, diag := m.Classify(edge.Predicate)
	if diag != nil && edge.To != nil {
		diag.Subject = fmt.Sprintf("%s (%s)", edge.To.Name, diag.Subject)
	}
	if c.Dropped {
		return types.ClassifiedEdge{}, false, diag
	}
	return types.ClassifiedEdge{DependencyEdge: edge, Platforms: c.Platforms}, true, diag
}
