package buckfile

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/dukaforge/buckshift/internal/graph"
	"github.com/dukaforge/buckshift/internal/platform"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Emitter turns crates into BUCK files. One emitter serves one invocation;
// diagnostics accumulate across crates and are drained once at the end.
type Emitter struct {
	graph     *graph.Graph
	mapper    *platform.Mapper
	config    types.RepoConfig
	checksums map[string]string
	diags     []types.Diagnostic
}

// New builds an emitter. checksums comes from the lockfile, keyed
// "<name>-<version>".
func New(g *graph.Graph, m *platform.Mapper, config types.RepoConfig, checksums map[string]string) *Emitter {
	return &Emitter{graph: g, mapper: m, config: config, checksums: checksums}
}

// Diagnostics returns the issues recorded so far.
func (e *Emitter) Diagnostics() []types.Diagnostic { return e.diags }

func (e *Emitter) report(d *types.Diagnostic) {
	if d != nil {
		e.diags = append(e.diags, *d)
	}
}

// Path returns the repo-relative path of the BUCK file for a crate.
func Path(c *graph.Crate) string {
	if c.FirstParty {
		return path.Join(c.RelPath, "BUCK")
	}
	return path.Join(CratesRoot, c.Name, c.Version, "BUCK")
}

// EmitCrate renders every rule for one crate.
func (e *Emitter) EmitCrate(c *graph.Crate) (*File, error) {
	if c.FirstParty {
		return e.emitFirstParty(c)
	}
	return e.emitThirdParty(c)
}

func (e *Emitter) emitThirdParty(c *graph.Crate) (*File, error) {
	if c.Lib == nil {
		return nil, fmt.Errorf("%w: third-party crate %s", types.ErrNoLibTarget, c.Name)
	}

	checksum, ok := e.checksums[c.Name+"-"+c.Version]
	if !ok {
		return nil, fmt.Errorf("no lockfile checksum for %s-%s", c.Name, c.Version)
	}

	file := &File{}
	file.Rules = append(file.Rules, &HTTPArchive{
		Name: c.Name + "-vendor",
		URLs: []string{fmt.Sprintf(
			"https://static.crates.io/crates/%s/%s-%s.crate", c.Name, c.Name, c.Version)},
		Sha256:      checksum,
		Type:        "tar.gz",
		StripPrefix: c.Name + "-" + c.Version,
		Out:         "vendor",
	})
	file.Rules = append(file.Rules, e.emitManifest(c))

	lib := e.emitRust(c, c.Lib)
	file.Rules = append(file.Rules, lib)

	e.emitBuildscript(file, c)
	return file, nil
}

func (e *Emitter) emitFirstParty(c *graph.Crate) (*File, error) {
	file := &File{}
	file.Rules = append(file.Rules, &FileGroup{
		Name:    c.Name + "-vendor",
		Include: []string{"**/**"},
		Out:     "vendor",
	})
	file.Rules = append(file.Rules, e.emitManifest(c))

	for _, bin := range c.Bins {
		rule := e.emitRust(c, bin)
		if bin.HasLibTarget {
			// main.rs may use items from lib.rs via the crate's own name.
			rule.Deps = append(rule.Deps, ":"+c.Lib.TargetName)
		}
		file.Rules = append(file.Rules, rule)
	}

	if c.Lib != nil {
		file.Rules = append(file.Rules, e.emitRust(c, c.Lib))
	}

	if !e.config.IgnoreTests {
		for _, test := range c.Tests {
			unittest := c.Lib != nil && test.TargetName == c.Lib.TargetName+"-unittest"
			file.Rules = append(file.Rules, e.emitTest(c, test, !unittest))
		}
	}

	e.emitBuildscript(file, c)
	return file, nil
}

func (e *Emitter) emitManifest(c *graph.Crate) *CargoManifest {
	return &CargoManifest{
		Name:   c.Name + "-manifest",
		Vendor: ":" + c.Name + "-vendor",
	}
}

// emitRust renders the common rust rule shape for a node.
func (e *Emitter) emitRust(c *graph.Crate, node *types.CrateNode) *RustRule {
	fn := FnRustLibrary
	switch node.Kind {
	case types.KindBinary, types.KindBuildScript:
		fn = FnRustBinary
	case types.KindTest:
		fn = FnRustTest
	}

	rule := &RustRule{
		Function:  fn,
		Name:      node.TargetName,
		Srcs:      []string{":" + c.Name + "-vendor"},
		Crate:     node.CrateName,
		CrateRoot: "vendor/" + node.SrcPath,
		Edition:   node.Edition,
		Features:  append([]string(nil), node.Features...),
		RustcFlags: []string{
			fmt.Sprintf("@$(location :%s-manifest[env_flags])", c.Name),
		},
		ProcMacro: node.ProcMacro,
	}
	if node.Kind != types.KindBuildScript {
		rule.Visibility = []string{"PUBLIC"}
	}
	if set, ok := platform.ExclusivePlatforms(c.Name); ok {
		rule.CompatibleWith = set.BuckLabels()
	}
	e.setDeps(rule, c, node)
	return rule
}

// emitTest renders a rust_test, gating it on the cross-compilation marker.
// Integration tests additionally get the CARGO_BIN_EXE path when the package
// has a matching binary, and a dependency on the package's own library.
func (e *Emitter) emitTest(c *graph.Crate, node *types.CrateNode, integration bool) *RustRule {
	rule := e.emitRust(c, node)
	rule.TargetCompatibleWith = CrossSelect
	if !integration {
		return rule
	}

	crateName := underscore(c.Name)
	for _, bin := range c.Bins {
		if bin.TargetName == crateName {
			if rule.Env == nil {
				rule.Env = map[string]string{}
			}
			rule.Env["CARGO_BIN_EXE_"+crateName] = fmt.Sprintf("$(location :%s)", crateName)
			break
		}
	}
	if node.HasLibTarget && c.Lib != nil {
		// Integration tests link the library like an external consumer.
		rule.Deps = append(rule.Deps, ":"+c.Lib.TargetName)
	}
	return rule
}

// depGroup accumulates every activation of one (dependency, alias) pair
// across the node's edges before deciding which attribute it lands in.
type depGroup struct {
	to            *types.CrateNode
	alias         string
	unconditional bool
	platforms     types.OSSet
	matched       bool
}

// setDeps classifies and merges the node's edges into the rule's dependency
// attributes. A pair with any unconditional activation, or whose conditional
// activations cover every OS, goes into the plain list; a pair matching no
// supported platform at all is omitted.
func (e *Emitter) setDeps(rule *RustRule, c *graph.Crate, node *types.CrateNode) {
	groups := make(map[string]*depGroup)
	var order []string

	for _, edge := range e.graph.Edges(node) {
		key := edge.To.PackageID + "\x00" + edge.Alias
		g, ok := groups[key]
		if !ok {
			g = &depGroup{to: edge.To, alias: edge.Alias, platforms: types.NewOSSet()}
			groups[key] = g
			order = append(order, key)
		}

		classified, keep, diag := e.mapper.ClassifyEdge(edge)
		e.report(diag)
		if !keep {
			continue
		}
		g.matched = true
		if classified.Unconditional() {
			g.unconditional = true
			continue
		}
		for _, o := range classified.Platforms.Sorted() {
			g.platforms.Add(o)
		}
	}

	fromRoot := e.graph.Root != nil && c.ID == e.graph.Root.ID
	for _, key := range order {
		g := groups[key]
		if !g.matched {
			continue
		}
		label := e.depLabel(g.to, fromRoot)
		if g.unconditional || g.platforms.IsFull() {
			e.insertDep(rule, label, g.alias, nil)
		} else {
			e.insertDep(rule, label, g.alias, g.platforms)
		}
	}
}

// insertDep places a label in deps, named_deps, os_deps, or os_named_deps.
// Duplicate aliases naming different targets keep the first label and record
// a conflict diagnostic.
func (e *Emitter) insertDep(rule *RustRule, label, alias string, platforms types.OSSet) {
	switch {
	case platforms == nil && alias == "":
		rule.Deps = append(rule.Deps, label)
	case platforms == nil:
		if rule.NamedDeps == nil {
			rule.NamedDeps = map[string]string{}
		}
		if existing, ok := rule.NamedDeps[alias]; ok && existing != label {
			e.report(&types.Diagnostic{
				Kind:    types.DiagConflict,
				Subject: alias,
				Detail:  fmt.Sprintf("alias maps to both %s and %s, keeping the first", existing, label),
			})
			return
		}
		rule.NamedDeps[alias] = label
	case alias == "":
		if rule.OSDeps == nil {
			rule.OSDeps = map[string][]string{}
		}
		for _, o := range platforms.Sorted() {
			rule.OSDeps[o.Key()] = append(rule.OSDeps[o.Key()], label)
		}
	default:
		if rule.OSNamedDeps == nil {
			rule.OSNamedDeps = map[string]map[string]string{}
		}
		entry := rule.OSNamedDeps[alias]
		if entry == nil {
			entry = map[string]string{}
			rule.OSNamedDeps[alias] = entry
		}
		for _, o := range platforms.Sorted() {
			if existing, ok := entry[o.Key()]; ok && existing != label {
				e.report(&types.Diagnostic{
					Kind:    types.DiagConflict,
					Subject: alias,
					Detail: fmt.Sprintf("alias maps to both %s and %s on %s, keeping the first",
						existing, label, o.Key()),
				})
				continue
			}
			entry[o.Key()] = label
		}
	}
}

// depLabel resolves the Buck label for a dependency's library node.
func (e *Emitter) depLabel(to *types.CrateNode, fromRoot bool) string {
	if to.FirstParty {
		return "//" + to.RelPath + ":" + to.TargetName
	}
	if e.config.InheritWorkspaceDeps && fromRoot {
		return "//third-party/rust:" + to.Name
	}
	return fmt.Sprintf("//%s/%s/%s:%s", CratesRoot, to.Name, to.Version, to.Name)
}

// emitBuildscript appends the build-script rules and patches the crate's
// library and binary rules to consume the script's outputs.
func (e *Emitter) emitBuildscript(file *File, c *graph.Crate) {
	if c.BuildScript == nil {
		return
	}
	runTarget := runName(c)

	for _, r := range file.Rules {
		rust, ok := r.(*RustRule)
		if !ok || rust.Function == FnRustTest {
			continue
		}
		if rust.Env == nil {
			rust.Env = map[string]string{}
		}
		rust.Env["OUT_DIR"] = fmt.Sprintf("$(location :%s[out_dir])", runTarget)
		rust.RustcFlags = append(rust.RustcFlags,
			fmt.Sprintf("@$(location :%s[rustc_flags])", runTarget))
	}

	file.Rules = append(file.Rules, e.emitRust(c, c.BuildScript))
	file.Rules = append(file.Rules, e.emitBuildscriptRun(c, runTarget))
}

func (e *Emitter) emitBuildscriptRun(c *graph.Crate, runTarget string) *BuildscriptRun {
	run := &BuildscriptRun{
		Name:            runTarget,
		PackageName:     c.Name,
		BuildscriptRule: ":" + c.BuildScript.TargetName,
		EnvSrcs:         []string{fmt.Sprintf(":%s-manifest[env_dict]", c.Name)},
		Features:        append([]string(nil), c.Features...),
		Version:         c.Version,
		ManifestDir:     ":" + c.Name + "-vendor",
		Visibility:      []string{"PUBLIC"},
	}

	// Normal dependencies carrying a `links` manifest key expose native
	// build metadata through their build script's run outputs.
	if c.Lib != nil {
		for _, edge := range e.graph.Edges(c.Lib) {
			if edge.To.Links == "" {
				continue
			}
			// The classification diagnostic is dropped here: setDeps
			// already reported it when it classified this same edge for
			// the library rule.
			_, keep, _ := e.mapper.ClassifyEdge(edge)
			if !keep {
				continue
			}
			dep, ok := e.graph.CrateByID(edge.To.PackageID)
			if !ok || dep.BuildScript == nil {
				e.report(&types.Diagnostic{
					Kind:    types.DiagOmitted,
					Subject: edge.To.Name,
					Detail:  "links key without a build script, metadata env omitted",
				})
				continue
			}
			run.EnvSrcs = append(run.EnvSrcs,
				fmt.Sprintf("%s:%s[metadata]", crateDir(dep), runName(dep)))
		}
	}
	return run
}

// runName derives the buildscript_run rule name, stripping the conventional
// -build suffix from the script target name.
func runName(c *graph.Crate) string {
	base := strings.TrimPrefix(c.BuildScript.TargetName, c.Name+"-")
	return c.Name + "-" + strings.TrimSuffix(base, "-build") + "-run"
}

// crateDir is the label prefix of the package's own BUCK file.
func crateDir(c *graph.Crate) string {
	if c.FirstParty {
		return "//" + c.RelPath
	}
	return fmt.Sprintf("//%s/%s/%s", CratesRoot, c.Name, c.Version)
}

// EmitAliases renders the third-party/rust/BUCK alias file for workspaces
// that inherit dependencies from the root manifest: one public alias per
// third-party crate a workspace member depends on, pointing at its newest
// version.
func (e *Emitter) EmitAliases() *File {
	newest := make(map[string]*graph.Crate)
	for _, c := range e.graph.Crates {
		if !c.FirstParty {
			continue
		}
		for _, node := range c.Nodes() {
			for _, edge := range e.graph.Edges(node) {
				dep, ok := e.graph.CrateByID(edge.To.PackageID)
				if !ok || dep.FirstParty {
					continue
				}
				if cur, ok := newest[dep.Name]; !ok || versionLess(cur.Version, dep.Version) {
					newest[dep.Name] = dep
				}
			}
		}
	}

	file := &File{}
	for _, name := range sortedKeys(newest) {
		dep := newest[name]
		file.Rules = append(file.Rules, &Alias{
			Name: name,
			Actual: fmt.Sprintf("//%s/%s/%s:%s",
				CratesRoot, dep.Name, dep.Version, dep.Name),
			Visibility: []string{"PUBLIC"},
		})
	}
	return file
}

// versionLess compares dotted version strings numerically per component,
// falling back to string comparison for non-numeric parts.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if ai != bi {
				return ai < bi
			}
			continue
		}
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

func underscore(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
