package types

// CrateKind identifies which Cargo target a graph node was built from.
type CrateKind string

// Crate kinds. A package may contribute several nodes, one per target kind.
const (
	KindLibrary     CrateKind = "library"
	KindBinary      CrateKind = "binary"
	KindTest        CrateKind = "test"
	KindBuildScript CrateKind = "build-script"
)

// CrateNode is one target of one resolved package. Identity is
// (Name, Version, Kind, TargetName); no two nodes share identity within a
// graph snapshot.
type CrateNode struct {
	PackageID  string
	Name       string
	Version    string
	Kind       CrateKind
	TargetName string

	// Edition and CrateName feed rule attributes directly.
	Edition   string
	CrateName string

	// SrcPath is the target's crate root, relative to the manifest dir.
	SrcPath string

	// Features is the enabled-feature set from the resolved graph.
	Features []string

	// FirstParty is true for workspace members (no registry source).
	FirstParty bool
	// RelPath is the manifest dir relative to the Buck2 root, for
	// first-party packages.
	RelPath string

	// ProcMacro marks proc-macro library targets.
	ProcMacro bool
	// HasLibTarget is set on binary and test nodes whose package also has
	// a library target (the bin/test may use the lib crate implicitly).
	HasLibTarget bool
	// Links is the package's `links` manifest key, if any.
	Links string
}

// DependencyEdge is one resolved dependency of a CrateNode. An empty
// Predicate means the dependency is active on every platform.
type DependencyEdge struct {
	From *CrateNode
	To   *CrateNode

	// Alias is the rename the depending crate uses, empty when the
	// dependency is not renamed.
	Alias string

	// Predicate is the raw target-conditional expression from the
	// manifest, e.g. `cfg(target_os = "windows")` or a bare triple.
	Predicate string
}

// ClassifiedEdge is a DependencyEdge plus its platform classification.
// Platforms is nil for unconditional edges and otherwise a non-empty proper
// subset of the supported systems. Classification is a pure function of the
// predicate and the cfg snapshots; it does not depend on evaluation order.
type ClassifiedEdge struct {
	DependencyEdge

	// Platforms is nil when the edge is unconditional.
	Platforms OSSet
}

// Unconditional reports whether the edge applies on every platform.
func (e ClassifiedEdge) Unconditional() bool { return e.Platforms == nil }
