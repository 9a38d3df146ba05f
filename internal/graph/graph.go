// Package graph builds the internal crate/dependency graph from cargo
// metadata, resolving renames, per-kind dependency filtering, and
// per-target-kind nodes.
package graph

import (
	"sort"

	"github.com/dukaforge/buckshift/pkg/types"
)

// Crate is one resolved package and the graph nodes its targets contribute.
type Crate struct {
	ID         string
	Name       string
	Version    string
	Edition    string
	Links      string
	FirstParty bool
	// RelPath is the manifest dir relative to the workspace root,
	// "/"-separated; empty for the root package.
	RelPath  string
	Features []string

	Lib         *types.CrateNode
	Bins        []*types.CrateNode
	Tests       []*types.CrateNode
	BuildScript *types.CrateNode
}

// Nodes returns every node of the crate, library first.
func (c *Crate) Nodes() []*types.CrateNode {
	var out []*types.CrateNode
	if c.Lib != nil {
		out = append(out, c.Lib)
	}
	out = append(out, c.Bins...)
	out = append(out, c.Tests...)
	if c.BuildScript != nil {
		out = append(out, c.BuildScript)
	}
	return out
}

// Graph is one immutable snapshot of the crate graph, rebuilt fresh every
// invocation from the external metadata snapshot.
type Graph struct {
	Crates []*Crate
	Root   *Crate

	byID  map[string]*Crate
	edges map[*types.CrateNode][]types.DependencyEdge
}

// CrateByID returns the crate for a resolved package ID.
func (g *Graph) CrateByID(id string) (*Crate, bool) {
	c, ok := g.byID[id]
	return c, ok
}

// FindByName returns the first crate with the given name, and matching
// version when version is non-empty.
func (g *Graph) FindByName(name, version string) (*Crate, bool) {
	for _, c := range g.Crates {
		if c.Name == name && (version == "" || c.Version == version) {
			return c, true
		}
	}
	return nil, false
}

// Edges returns the outgoing dependency edges of a node.
func (g *Graph) Edges(n *types.CrateNode) []types.DependencyEdge {
	return g.edges[n]
}

// Dependents returns the crates whose library depends on c, sorted by name.
func (g *Graph) Dependents(c *Crate) []*Crate {
	seen := make(map[*Crate]bool)
	var out []*Crate
	for _, from := range g.Crates {
		for _, node := range from.Nodes() {
			for _, e := range g.edges[node] {
				if e.To != nil && e.To.PackageID == c.ID && !seen[from] {
					seen[from] = true
					out = append(out, from)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
