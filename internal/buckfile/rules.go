// Package buckfile renders crate graph nodes and their classified dependency
// edges into canonical BUCK text. Rendering is deterministic: attribute order
// is fixed, list entries are sorted, and map keys are emitted in sorted
// order, so the same graph always produces byte-identical output.
package buckfile

import (
	"sort"
	"strings"
)

// CratesRoot is the repository directory third-party crate cells live under.
const CratesRoot = "third-party/rust/crates"

// CrossSelect gates test rules on the cross-compilation marker. Tests stay
// runnable on the host and become incompatible under a cross platform.
const CrossSelect = `select({"//platforms:cross": ["config//:none"], "DEFAULT": []})`

// Rule is one starlark function call in a generated BUCK file.
type Rule interface {
	Render() string
}

// Load is a load(...) statement.
type Load struct {
	Bzl   string
	Items []string
}

func (l *Load) Render() string {
	items := sortedCopy(l.Items)
	var b strings.Builder
	b.WriteString("load(")
	b.WriteString(quote(l.Bzl))
	for _, it := range items {
		b.WriteString(", ")
		b.WriteString(quote(it))
	}
	b.WriteString(")\n")
	return b.String()
}

// HTTPArchive vendors a third-party crate from the registry.
type HTTPArchive struct {
	Name        string
	URLs        []string
	Sha256      string
	Type        string
	StripPrefix string
	Out         string
}

func (r *HTTPArchive) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.list("urls", r.URLs)
	a.str("sha256", r.Sha256)
	a.str("type", r.Type)
	a.str("strip_prefix", r.StripPrefix)
	if r.Out != "" {
		a.str("out", r.Out)
	}
	return a.call("http_archive")
}

// FileGroup exposes a first-party package's sources as its vendor directory.
type FileGroup struct {
	Name    string
	Include []string
	Exclude []string
	Out     string
}

func (r *FileGroup) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.raw("srcs", renderGlob(r.Include, r.Exclude))
	if r.Out != "" {
		a.str("out", r.Out)
	}
	return a.call("filegroup")
}

// CargoManifest derives env flags and the env dict from the vendored
// Cargo.toml.
type CargoManifest struct {
	Name   string
	Vendor string
}

func (r *CargoManifest) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.str("vendor", r.Vendor)
	return a.call("cargo_manifest")
}

// Alias re-exports the newest version of a third-party crate under a stable
// label, for workspaces that inherit dependencies from the root manifest.
type Alias struct {
	Name       string
	Actual     string
	Visibility []string
}

func (r *Alias) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.str("actual", r.Actual)
	a.list("visibility", r.Visibility)
	return a.call("alias")
}

// Rust rule function names.
const (
	FnRustLibrary = "rust_library"
	FnRustBinary  = "rust_binary"
	FnRustTest    = "rust_test"
)

// RustRule is a rust_library, rust_binary, or rust_test call. The dependency
// attributes split four ways: plain deps, renamed deps (named_deps),
// platform-conditional deps (os_deps), and renamed platform-conditional deps
// (os_named_deps).
type RustRule struct {
	Function  string
	Name      string
	Srcs      []string
	Crate     string
	CrateRoot string
	Edition   string

	// TargetCompatibleWith is a raw starlark expression, typically the
	// cross-compilation select on test rules.
	TargetCompatibleWith string
	CompatibleWith       []string

	Env        map[string]string
	Features   []string
	RustcFlags []string
	ProcMacro  bool

	NamedDeps   map[string]string
	OSNamedDeps map[string]map[string]string
	OSDeps      map[string][]string
	Visibility  []string
	Deps        []string
}

func (r *RustRule) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.list("srcs", r.Srcs)
	a.str("crate", r.Crate)
	a.str("crate_root", r.CrateRoot)
	a.str("edition", r.Edition)
	if r.TargetCompatibleWith != "" {
		a.raw("target_compatible_with", r.TargetCompatibleWith)
	}
	if len(r.CompatibleWith) > 0 {
		a.list("compatible_with", r.CompatibleWith)
	}
	if len(r.Env) > 0 {
		a.strMap("env", r.Env)
	}
	if len(r.Features) > 0 {
		a.list("features", r.Features)
	}
	if len(r.RustcFlags) > 0 {
		a.list("rustc_flags", r.RustcFlags)
	}
	if r.ProcMacro {
		a.raw("proc_macro", "True")
	}
	if len(r.NamedDeps) > 0 {
		a.strMap("named_deps", r.NamedDeps)
	}
	if len(r.OSNamedDeps) > 0 {
		a.nestedMap("os_named_deps", r.OSNamedDeps)
	}
	if len(r.OSDeps) > 0 {
		a.listMap("os_deps", r.OSDeps)
	}
	a.list("visibility", r.Visibility)
	if len(r.Deps) > 0 {
		a.list("deps", r.Deps)
	}
	return a.call(r.Function)
}

// BuildscriptRun executes a compiled build script and captures its OUT_DIR,
// rustc flags, and metadata outputs.
type BuildscriptRun struct {
	Name            string
	PackageName     string
	BuildscriptRule string
	Env             map[string]string
	EnvSrcs         []string
	Features        []string
	Version         string
	ManifestDir     string
	Visibility      []string
}

func (r *BuildscriptRun) Render() string {
	a := newAttrs()
	a.str("name", r.Name)
	a.str("package_name", r.PackageName)
	a.str("buildscript_rule", r.BuildscriptRule)
	if len(r.Env) > 0 {
		a.strMap("env", r.Env)
	}
	if len(r.EnvSrcs) > 0 {
		a.list("env_srcs", r.EnvSrcs)
	}
	if len(r.Features) > 0 {
		a.list("features", r.Features)
	}
	a.str("version", r.Version)
	a.str("manifest_dir", r.ManifestDir)
	if len(r.Visibility) > 0 {
		a.list("visibility", r.Visibility)
	}
	return a.call("buildscript_run")
}

// File is one generated BUCK file: its rules plus the load statements they
// need.
type File struct {
	Rules []Rule
}

// Render produces the full generated text, load statements first.
func (f *File) Render() string {
	var b strings.Builder
	b.WriteString("# @generated by `buckshift`\n\n")
	for _, l := range f.loads() {
		b.WriteString(l.Render())
	}
	b.WriteString("\n")
	for i, r := range f.Rules {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Render())
	}
	return b.String()
}

// loads derives the load statements from which rule kinds are present.
func (f *File) loads() []*Load {
	var hasManifest bool
	wrapper := map[string]bool{}
	for _, r := range f.Rules {
		switch rule := r.(type) {
		case *CargoManifest:
			hasManifest = true
		case *RustRule:
			wrapper[rule.Function] = true
		case *BuildscriptRun:
			wrapper["buildscript_run"] = true
		}
	}

	var loads []*Load
	if hasManifest {
		loads = append(loads, &Load{
			Bzl:   "@buckshift//:cargo_manifest.bzl",
			Items: []string{"cargo_manifest"},
		})
	}
	if len(wrapper) > 0 {
		items := make([]string, 0, len(wrapper))
		for item := range wrapper {
			items = append(items, item)
		}
		sort.Strings(items)
		loads = append(loads, &Load{
			Bzl:   "@buckshift//:wrapper.bzl",
			Items: items,
		})
	}
	return loads
}
