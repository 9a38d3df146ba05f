package graph

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dukaforge/buckshift/internal/cargo"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Build constructs the crate graph from parsed cargo metadata. Third-party
// crates contribute a library node (plus a build-script node when present);
// workspace members additionally contribute binary and test nodes.
func Build(md *cargo.Metadata) (*Graph, error) {
	g := &Graph{
		byID:  make(map[string]*Crate),
		edges: make(map[*types.CrateNode][]types.DependencyEdge),
	}

	for i := range md.Resolve.Nodes {
		node := &md.Resolve.Nodes[i]
		pkg, ok := md.PackageByID(node.ID)
		if !ok {
			continue
		}
		crate := buildCrate(pkg, node, md.WorkspaceRoot)
		if crate == nil {
			continue
		}
		g.Crates = append(g.Crates, crate)
		g.byID[crate.ID] = crate
	}

	sort.Slice(g.Crates, func(i, j int) bool {
		if g.Crates[i].Name != g.Crates[j].Name {
			return g.Crates[i].Name < g.Crates[j].Name
		}
		return g.Crates[i].Version < g.Crates[j].Version
	})

	if md.Resolve.Root != "" {
		g.Root = g.byID[md.Resolve.Root]
	}

	for i := range md.Resolve.Nodes {
		node := &md.Resolve.Nodes[i]
		crate, ok := g.byID[node.ID]
		if !ok {
			continue
		}
		g.connect(crate, node)
	}

	return g, nil
}

// buildCrate translates one resolved package into a Crate, or nil when the
// package contributes nothing buildable (a bin-only third-party tool, say).
func buildCrate(pkg *cargo.Package, node *cargo.Node, workspaceRoot string) *Crate {
	crate := &Crate{
		ID:         pkg.ID,
		Name:       pkg.Name,
		Version:    pkg.Version,
		Edition:    pkg.Edition,
		Links:      pkg.Links,
		FirstParty: pkg.FirstParty(),
		Features:   append([]string(nil), node.Features...),
	}

	manifestDir := parentDir(pkg.ManifestPath)
	if crate.FirstParty {
		crate.RelPath = relPath(workspaceRoot, manifestDir)
	}

	libTarget := pkg.LibTarget()
	var binTargets, testTargets []*cargo.Target
	var buildTarget *cargo.Target
	for i := range pkg.Targets {
		t := &pkg.Targets[i]
		switch {
		case t.HasKind("bin"):
			binTargets = append(binTargets, t)
		case t.HasKind("test"):
			testTargets = append(testTargets, t)
		case t.HasKind("custom-build"):
			buildTarget = t
		}
	}

	if libTarget != nil {
		name := libTarget.Name
		for _, b := range binTargets {
			if b.Name == name {
				// Cargo allows a bin and lib to share a name; buck2
				// labels cannot, so the library gets a lib prefix.
				name = "lib" + name
				break
			}
		}
		crate.Lib = newNode(pkg, crate, types.KindLibrary, name, libTarget, manifestDir)
		crate.Lib.ProcMacro = libTarget.IsProcMacro()
	}

	if crate.FirstParty {
		for _, b := range binTargets {
			bin := newNode(pkg, crate, types.KindBinary, b.Name, b, manifestDir)
			bin.HasLibTarget = libTarget != nil && libTarget.Name == b.Name
			crate.Bins = append(crate.Bins, bin)
		}
		if libTarget != nil && libTarget.Test {
			unit := newNode(pkg, crate, types.KindTest, libTarget.Name+"-unittest", libTarget, manifestDir)
			unit.HasLibTarget = true
			crate.Tests = append(crate.Tests, unit)
		}
		for _, tt := range testTargets {
			it := newNode(pkg, crate, types.KindTest, tt.Name, tt, manifestDir)
			it.HasLibTarget = libTarget != nil && libTarget.Name == underscore(pkg.Name)
			crate.Tests = append(crate.Tests, it)
		}
	}

	if buildTarget != nil {
		crate.BuildScript = newNode(pkg, crate, types.KindBuildScript,
			fmt.Sprintf("%s-%s", pkg.Name, buildTarget.Name), buildTarget, manifestDir)
	}

	if crate.Lib == nil && len(crate.Bins) == 0 && len(crate.Tests) == 0 {
		return nil
	}
	return crate
}

func newNode(pkg *cargo.Package, crate *Crate, kind types.CrateKind, targetName string, t *cargo.Target, manifestDir string) *types.CrateNode {
	return &types.CrateNode{
		PackageID:  pkg.ID,
		Name:       pkg.Name,
		Version:    pkg.Version,
		Kind:       kind,
		TargetName: targetName,
		Edition:    pkg.Edition,
		CrateName:  underscore(t.Name),
		SrcPath:    relPath(manifestDir, t.SrcPath),
		Features:   crate.Features,
		FirstParty: crate.FirstParty,
		RelPath:    crate.RelPath,
		Links:      pkg.Links,
	}
}

// depKindMatches reports whether a dependency activation applies to a node
// kind: build-scripts see build-deps, test targets see both dev and normal
// deps, everything else normal deps only.
func depKindMatches(kind types.CrateKind, depKind string) bool {
	switch kind {
	case types.KindBuildScript:
		return depKind == "build"
	case types.KindTest:
		return depKind == "dev" || depKind == ""
	default:
		return depKind == ""
	}
}

func (g *Graph) connect(crate *Crate, node *cargo.Node) {
	for _, from := range crate.Nodes() {
		for _, dep := range node.Deps {
			toCrate, ok := g.byID[dep.Pkg]
			if !ok || toCrate.Lib == nil {
				continue
			}
			alias := ""
			if dep.Name != underscore(toCrate.Name) {
				alias = dep.Name
			}
			seen := make(map[string]bool)
			for _, dk := range dep.DepKinds {
				if !depKindMatches(from.Kind, dk.Kind) {
					continue
				}
				if seen[dk.Target] {
					continue
				}
				seen[dk.Target] = true
				g.edges[from] = append(g.edges[from], types.DependencyEdge{
					From:      from,
					To:        toCrate.Lib,
					Alias:     alias,
					Predicate: dk.Target,
				})
			}
		}
	}
}

func underscore(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// parentDir returns the directory of a manifest path, tolerating windows
// separators since buck2 wants forward slashes everywhere.
func parentDir(p string) string {
	return path.Dir(normalize(p))
}

// relPath strips base from p, returning a "/"-separated relative path.
func relPath(base, p string) string {
	base = strings.TrimSuffix(normalize(base), "/")
	p = normalize(p)
	if p == base {
		return ""
	}
	if rest, ok := strings.CutPrefix(p, base+"/"); ok {
		return rest
	}
	return p
}

func normalize(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
