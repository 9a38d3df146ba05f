// Package cargo obtains the resolved dependency graph from cargo's metadata
// facility, reads lockfile checksums, and drives manifest edits for
// dependency transactions.
package cargo

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/dukaforge/buckshift/pkg/types"
)

// Metadata is the parsed output of `cargo metadata --format-version 1`,
// reduced to the fields the migration engine consumes.
type Metadata struct {
	Packages      []Package `json:"packages"`
	Resolve       Resolve   `json:"resolve"`
	WorkspaceRoot string    `json:"workspace_root"`

	// packagesByID and nodesByID are built once after parsing.
	packagesByID map[string]*Package
	nodesByID    map[string]*Node
}

// Package is one package in the resolved graph.
type Package struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Source       string   `json:"source"` // empty for workspace members
	Edition      string   `json:"edition"`
	Links        string   `json:"links"`
	ManifestPath string   `json:"manifest_path"`
	Targets      []Target `json:"targets"`
}

// Target is one build target of a package.
type Target struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
	Test    bool     `json:"test"`
}

// Resolve is the resolved dependency graph section.
type Resolve struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
}

// Node is one resolved package with its outgoing dependencies and the
// feature set enabled for it.
type Node struct {
	ID       string    `json:"id"`
	Deps     []NodeDep `json:"deps"`
	Features []string  `json:"features"`
}

// NodeDep is one resolved dependency edge. Name is the name the depending
// crate uses (the rename, when the dependency is renamed).
type NodeDep struct {
	Name     string    `json:"name"`
	Pkg      string    `json:"pkg"`
	DepKinds []DepKind `json:"dep_kinds"`
}

// DepKind is one (kind, target predicate) activation of a dependency.
// Kind is empty for normal deps, "dev" or "build" otherwise. Target is the
// raw conditional predicate, empty when the activation is unconditional.
type DepKind struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// FirstParty reports whether the package is a workspace member.
func (p *Package) FirstParty() bool { return p.Source == "" }

// LibTarget returns the package's library-like target (lib, rlib, dylib,
// cdylib, staticlib, or proc-macro), or nil.
func (p *Package) LibTarget() *Target {
	for i := range p.Targets {
		if p.Targets[i].IsLib() {
			return &p.Targets[i]
		}
	}
	return nil
}

// libKinds are the target kinds treated as libraries.
var libKinds = map[string]bool{
	"lib":        true,
	"rlib":       true,
	"dylib":      true,
	"cdylib":     true,
	"staticlib":  true,
	"proc-macro": true,
}

// IsLib reports whether the target is library-like.
func (t *Target) IsLib() bool {
	for _, k := range t.Kind {
		if libKinds[k] {
			return true
		}
	}
	return false
}

// HasKind reports whether the target has the exact kind.
func (t *Target) HasKind(kind string) bool {
	for _, k := range t.Kind {
		if k == kind {
			return true
		}
	}
	return false
}

// IsProcMacro reports whether the target is a proc-macro.
func (t *Target) IsProcMacro() bool { return t.HasKind("proc-macro") }

// Load invokes `cargo metadata` in dir and parses the result. Failures are
// fatal for the whole invocation: no partial graph is usable.
func Load(ctx context.Context, dir string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, "cargo", "metadata", "--format-version", "1")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMetadata, err)
	}
	return Parse(out)
}

// Parse decodes raw cargo metadata JSON.
func Parse(raw []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", types.ErrMetadata, err)
	}

	md.packagesByID = make(map[string]*Package, len(md.Packages))
	for i := range md.Packages {
		md.packagesByID[md.Packages[i].ID] = &md.Packages[i]
	}
	md.nodesByID = make(map[string]*Node, len(md.Resolve.Nodes))
	for i := range md.Resolve.Nodes {
		md.nodesByID[md.Resolve.Nodes[i].ID] = &md.Resolve.Nodes[i]
	}
	return &md, nil
}

// PackageByID returns the package for a resolved node ID.
func (m *Metadata) PackageByID(id string) (*Package, bool) {
	p, ok := m.packagesByID[id]
	return p, ok
}

// NodeByID returns the resolved node for a package ID.
func (m *Metadata) NodeByID(id string) (*Node, bool) {
	n, ok := m.nodesByID[id]
	return n, ok
}

// RootPackage returns the workspace root package, or an error for virtual
// workspaces with no root.
func (m *Metadata) RootPackage() (*Package, error) {
	if m.Resolve.Root == "" {
		return nil, fmt.Errorf("%w: workspace has no root package", types.ErrMetadata)
	}
	p, ok := m.packagesByID[m.Resolve.Root]
	if !ok {
		return nil, fmt.Errorf("%w: root package %q not in package list", types.ErrMetadata, m.Resolve.Root)
	}
	return p, nil
}
