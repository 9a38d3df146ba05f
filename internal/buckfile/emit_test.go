package buckfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/buckshift/internal/cargo"
	"github.com/dukaforge/buckshift/internal/graph"
	"github.com/dukaforge/buckshift/internal/platform"
	"github.com/dukaforge/buckshift/internal/rustc"
	"github.com/dukaforge/buckshift/pkg/types"
)

const emitMetadata = `{
  "packages": [
    {
      "id": "path+file:///work/demo#0.1.0",
      "name": "demo",
      "version": "0.1.0",
      "source": null,
      "edition": "2021",
      "manifest_path": "/work/demo/Cargo.toml",
      "targets": [
        {"name": "demo", "kind": ["lib"], "src_path": "/work/demo/src/lib.rs", "test": true},
        {"name": "demo", "kind": ["bin"], "src_path": "/work/demo/src/main.rs", "test": true},
        {"name": "cli", "kind": ["test"], "src_path": "/work/demo/tests/cli.rs", "test": true},
        {"name": "build-script-build", "kind": ["custom-build"], "src_path": "/work/demo/build.rs", "test": false}
      ]
    },
    {
      "id": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150",
      "name": "libc",
      "version": "0.2.150",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "edition": "2015",
      "links": "c",
      "manifest_path": "/cargo/registry/libc-0.2.150/Cargo.toml",
      "targets": [
        {"name": "libc", "kind": ["lib"], "src_path": "/cargo/registry/libc-0.2.150/src/lib.rs", "test": true},
        {"name": "build-script-build", "kind": ["custom-build"], "src_path": "/cargo/registry/libc-0.2.150/build.rs", "test": false}
      ]
    },
    {
      "id": "registry+https://github.com/rust-lang/crates.io-index#winreg@0.52.0",
      "name": "winreg",
      "version": "0.52.0",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "edition": "2018",
      "manifest_path": "/cargo/registry/winreg-0.52.0/Cargo.toml",
      "targets": [
        {"name": "winreg", "kind": ["lib"], "src_path": "/cargo/registry/winreg-0.52.0/src/lib.rs", "test": true}
      ]
    }
  ],
  "resolve": {
    "root": "path+file:///work/demo#0.1.0",
    "nodes": [
      {
        "id": "path+file:///work/demo#0.1.0",
        "deps": [
          {
            "name": "libc",
            "pkg": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150",
            "dep_kinds": [{"kind": null, "target": "cfg(unix)"}]
          },
          {
            "name": "winreg",
            "pkg": "registry+https://github.com/rust-lang/crates.io-index#winreg@0.52.0",
            "dep_kinds": [{"kind": null, "target": "cfg(target_os = \"windows\")"}]
          }
        ],
        "features": ["default"]
      },
      {"id": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150", "deps": [], "features": ["default", "std"]},
      {"id": "registry+https://github.com/rust-lang/crates.io-index#winreg@0.52.0", "deps": [], "features": []}
    ]
  },
  "workspace_root": "/work/demo"
}`

var emitChecksums = map[string]string{
	"libc-0.2.150": strings.Repeat("a", 64),
	"winreg-0.52.0": strings.Repeat("b", 64),
}

func testMapper() *platform.Mapper {
	snaps := make(map[string]rustc.Snapshot)
	for _, target := range platform.SupportedTargets {
		facts := map[string][]string{
			"target_os":   {string(target.OS)},
			"target_arch": {strings.Split(target.Triple, "-")[0]},
		}
		switch target.OS {
		case types.OSLinux:
			facts["unix"] = nil
			facts["target_family"] = []string{"unix"}
			facts["target_os"] = []string{"linux"}
		case types.OSMacos:
			facts["unix"] = nil
			facts["target_family"] = []string{"unix"}
			facts["target_os"] = []string{"macos"}
		case types.OSWindows:
			facts["windows"] = nil
			facts["target_family"] = []string{"windows"}
		}
		snaps[target.Triple] = rustc.NewSnapshot(facts)
	}
	return platform.NewMapper(snaps)
}

func emitterForSample(t *testing.T, config types.RepoConfig) (*Emitter, *graph.Graph) {
	t.Helper()
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	g, err := graph.Build(md)
	require.NoError(t, err)
	return New(g, testMapper(), config, emitChecksums), g
}

func TestPath(t *testing.T) {
	_, g := emitterForSample(t, types.RepoConfig{})
	libc, _ := g.FindByName("libc", "")
	assert.Equal(t, "third-party/rust/crates/libc/0.2.150/BUCK", Path(libc))
	assert.Equal(t, "BUCK", Path(g.Root))
}

func TestEmitThirdParty(t *testing.T) {
	e, g := emitterForSample(t, types.RepoConfig{})
	libc, _ := g.FindByName("libc", "")

	file, err := e.EmitCrate(libc)
	require.NoError(t, err)
	got := file.Render()

	assert.Contains(t, got, `http_archive(`)
	assert.Contains(t, got, `"https://static.crates.io/crates/libc/libc-0.2.150.crate"`)
	assert.Contains(t, got, `sha256 = "`+strings.Repeat("a", 64)+`"`)
	assert.Contains(t, got, `strip_prefix = "libc-0.2.150"`)
	assert.Contains(t, got, `name = "libc-manifest"`)
	assert.Contains(t, got, `crate_root = "vendor/src/lib.rs"`)

	// The build script patches the library rule and adds its own rules.
	assert.Contains(t, got, `"OUT_DIR": "$(location :libc-build-script-run[out_dir])"`)
	assert.Contains(t, got, `"@$(location :libc-build-script-run[rustc_flags])"`)
	assert.Contains(t, got, `name = "libc-build-script-build"`)
	assert.Contains(t, got, `name = "libc-build-script-run"`)
	assert.Contains(t, got, `buildscript_rule = ":libc-build-script-build"`)
	assert.Contains(t, got, `":libc-manifest[env_dict]"`)
}

func TestEmitThirdParty_MissingChecksum(t *testing.T) {
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	g, err := graph.Build(md)
	require.NoError(t, err)
	e := New(g, testMapper(), types.RepoConfig{}, nil)

	libc, _ := g.FindByName("libc", "")
	_, err = e.EmitCrate(libc)
	assert.Error(t, err)
}

func TestEmitThirdParty_ExclusiveCrate(t *testing.T) {
	e, g := emitterForSample(t, types.RepoConfig{})
	winreg, _ := g.FindByName("winreg", "")

	file, err := e.EmitCrate(winreg)
	require.NoError(t, err)
	got := file.Render()
	assert.Contains(t, got, `"prelude//os/constraints:windows"`)
}

func TestEmitFirstParty(t *testing.T) {
	e, g := emitterForSample(t, types.RepoConfig{})

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()

	assert.Contains(t, got, `name = "demo-vendor"`)
	assert.Contains(t, got, `glob(`)

	// Bin and lib share the name, so the library rule is prefixed and the
	// binary depends on it.
	assert.Contains(t, got, `name = "libdemo"`)
	assert.Contains(t, got, `":libdemo"`)

	// The unix dependency covers linux and macos only; the windows one is
	// confined to its OS. Neither appears in plain deps.
	assert.Contains(t, got, `"linux": [
            "//third-party/rust/crates/libc/0.2.150:libc",
        ],`)
	assert.Contains(t, got, `"macos": [
            "//third-party/rust/crates/libc/0.2.150:libc",
        ],`)
	assert.Contains(t, got, `"windows": [
            "//third-party/rust/crates/winreg/0.52.0:winreg",
        ],`)

	// Integration test gets the cross gate and the bin path env.
	assert.Contains(t, got, `name = "cli"`)
	assert.Contains(t, got, `name = "demo-unittest"`)
	assert.Contains(t, got, `"CARGO_BIN_EXE_demo": "$(location :demo)"`)
	assert.Contains(t, got, `target_compatible_with = select(`)

	// The root has its own build script; its run rule captures the libc
	// links metadata for unix platforms.
	assert.Contains(t, got, `name = "demo-build-script-run"`)
	assert.Contains(t, got,
		`"//third-party/rust/crates/libc/0.2.150:libc-build-script-run[metadata]"`)
}

func TestEmitFirstParty_IgnoreTests(t *testing.T) {
	e, g := emitterForSample(t, types.RepoConfig{IgnoreTests: true})
	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()
	assert.NotContains(t, got, "rust_test(")
	assert.NotContains(t, got, "demo-unittest")
}

func TestEmit_InheritWorkspaceDeps(t *testing.T) {
	e, g := emitterForSample(t, types.RepoConfig{InheritWorkspaceDeps: true})

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()
	assert.Contains(t, got, `"//third-party/rust:libc"`)
	assert.NotContains(t, got, `"//third-party/rust/crates/libc/0.2.150:libc",`)

	aliases := e.EmitAliases().Render()
	assert.Contains(t, aliases, `alias(`)
	assert.Contains(t, aliases, `name = "libc"`)
	assert.Contains(t, aliases, `actual = "//third-party/rust/crates/libc/0.2.150:libc"`)
	assert.Contains(t, aliases, `name = "winreg"`)
}

func TestEmit_AlwaysTruePredicateCollapses(t *testing.T) {
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	md.Resolve.Nodes[0].Deps[0].DepKinds[0].Target =
		`cfg(any(target_os = "linux", target_os = "macos", target_os = "windows"))`
	g, err := graph.Build(md)
	require.NoError(t, err)
	e := New(g, testMapper(), types.RepoConfig{}, emitChecksums)

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()
	assert.Contains(t, got, `deps = [
        "//third-party/rust/crates/libc/0.2.150:libc",`)
}

func TestEmit_UnknownKeyFailOpen(t *testing.T) {
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	md.Resolve.Nodes[0].Deps[0].DepKinds[0].Target = `cfg(bogus_key)`
	g, err := graph.Build(md)
	require.NoError(t, err)
	e := New(g, testMapper(), types.RepoConfig{}, emitChecksums)

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()

	// Fail-open: the dependency lands in plain deps, with a diagnostic.
	assert.Contains(t, got, `"//third-party/rust/crates/libc/0.2.150:libc",`)
	found := false
	for _, d := range e.Diagnostics() {
		if d.Kind == types.DiagPredicate {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEmit_UnmatchedPredicateOmits(t *testing.T) {
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	md.Resolve.Nodes[0].Deps[0].DepKinds[0].Target = `cfg(target_os = "freebsd")`
	g, err := graph.Build(md)
	require.NoError(t, err)
	e := New(g, testMapper(), types.RepoConfig{}, emitChecksums)

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()
	assert.NotContains(t, got, "libc/0.2.150:libc\",")

	found := false
	for _, d := range e.Diagnostics() {
		if d.Kind == types.DiagOmitted {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEmit_RenamedDependency(t *testing.T) {
	md, err := cargo.Parse([]byte(emitMetadata))
	require.NoError(t, err)
	md.Resolve.Nodes[0].Deps[0].Name = "sys"
	g, err := graph.Build(md)
	require.NoError(t, err)
	e := New(g, testMapper(), types.RepoConfig{}, emitChecksums)

	file, err := e.EmitCrate(g.Root)
	require.NoError(t, err)
	got := file.Render()
	assert.Contains(t, got, `os_named_deps = {
        "sys": {
            "linux": "//third-party/rust/crates/libc/0.2.150:libc",
            "macos": "//third-party/rust/crates/libc/0.2.150:libc",
        },
    },`)
}

func TestEmit_Idempotent(t *testing.T) {
	e1, g1 := emitterForSample(t, types.RepoConfig{})
	e2, g2 := emitterForSample(t, types.RepoConfig{})
	for i := range g1.Crates {
		f1, err := e1.EmitCrate(g1.Crates[i])
		require.NoError(t, err)
		f2, err := e2.EmitCrate(g2.Crates[i])
		require.NoError(t, err)
		assert.Equal(t, f1.Render(), f2.Render())
	}
}

func TestVersionLess(t *testing.T) {
	assert.True(t, versionLess("0.2.9", "0.2.10"))
	assert.False(t, versionLess("0.2.10", "0.2.9"))
	assert.True(t, versionLess("1.0", "1.0.1"))
	assert.False(t, versionLess("2.0.0", "2.0.0"))
}
