package cargo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetadata = `{
  "packages": [
    {
      "id": "path+file:///work/demo#0.1.0",
      "name": "demo",
      "version": "0.1.0",
      "source": null,
      "edition": "2021",
      "links": null,
      "manifest_path": "/work/demo/Cargo.toml",
      "targets": [
        {"name": "demo", "kind": ["lib"], "src_path": "/work/demo/src/lib.rs", "test": true},
        {"name": "demo", "kind": ["bin"], "src_path": "/work/demo/src/main.rs", "test": true}
      ]
    },
    {
      "id": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150",
      "name": "libc",
      "version": "0.2.150",
      "source": "registry+https://github.com/rust-lang/crates.io-index",
      "edition": "2015",
      "links": null,
      "manifest_path": "/cargo/registry/libc-0.2.150/Cargo.toml",
      "targets": [
        {"name": "libc", "kind": ["lib"], "src_path": "/cargo/registry/libc-0.2.150/src/lib.rs", "test": true},
        {"name": "build-script-build", "kind": ["custom-build"], "src_path": "/cargo/registry/libc-0.2.150/build.rs", "test": false}
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
            "dep_kinds": [
              {"kind": null, "target": "cfg(unix)"},
              {"kind": "dev", "target": null}
            ]
          }
        ],
        "features": ["default"]
      },
      {
        "id": "registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150",
        "deps": [],
        "features": ["default", "std"]
      }
    ]
  },
  "workspace_root": "/work/demo"
}`

func TestParse(t *testing.T) {
	md, err := Parse([]byte(sampleMetadata))
	require.NoError(t, err)

	root, err := md.RootPackage()
	require.NoError(t, err)
	assert.Equal(t, "demo", root.Name)
	assert.True(t, root.FirstParty())

	libc, ok := md.PackageByID("registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150")
	require.True(t, ok)
	assert.False(t, libc.FirstParty())
	require.NotNil(t, libc.LibTarget())
	assert.Equal(t, "libc", libc.LibTarget().Name)

	node, ok := md.NodeByID(root.ID)
	require.True(t, ok)
	require.Len(t, node.Deps, 1)
	dep := node.Deps[0]
	assert.Equal(t, "libc", dep.Name)
	require.Len(t, dep.DepKinds, 2)
	assert.Equal(t, "", dep.DepKinds[0].Kind)
	assert.Equal(t, "cfg(unix)", dep.DepKinds[0].Target)
	assert.Equal(t, "dev", dep.DepKinds[1].Kind)
	assert.Equal(t, "", dep.DepKinds[1].Target)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestTarget_Kinds(t *testing.T) {
	lib := Target{Name: "x", Kind: []string{"lib"}}
	pm := Target{Name: "x", Kind: []string{"proc-macro"}}
	bin := Target{Name: "x", Kind: []string{"bin"}}
	build := Target{Name: "build-script-build", Kind: []string{"custom-build"}}

	assert.True(t, lib.IsLib())
	assert.True(t, pm.IsLib())
	assert.True(t, pm.IsProcMacro())
	assert.False(t, bin.IsLib())
	assert.True(t, build.HasKind("custom-build"))
}

func TestChecksums(t *testing.T) {
	dir := t.TempDir()
	lock := `version = 4

[[package]]
name = "demo"
version = "0.1.0"

[[package]]
name = "libc"
version = "0.2.150"
source = "registry+https://github.com/rust-lang/crates.io-index"
checksum = "89d92a4743f9a61002fae18374ed11e7973f530cb3a3255fb354818118b2203c"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(lock), 0o644))

	sums, err := Checksums(dir)
	require.NoError(t, err)
	assert.Equal(t,
		"89d92a4743f9a61002fae18374ed11e7973f530cb3a3255fb354818118b2203c",
		sums["libc-0.2.150"])
	// Workspace members carry no checksum.
	_, ok := sums["demo-0.1.0"]
	assert.False(t, ok)
}

func TestManifestSnapshot_Restore(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n"), 0o644))

	snap, err := SnapshotManifests(dir)
	require.NoError(t, err)

	// Simulate a transaction editing the manifest and creating a lockfile.
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"demo\"\n[dependencies]\nlibc = \"0.2\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte("version = 4\n"), 0o644))

	require.NoError(t, snap.Restore())

	got, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, "[package]\nname = \"demo\"\n", string(got))
	_, err = os.Stat(filepath.Join(dir, "Cargo.lock"))
	assert.True(t, os.IsNotExist(err))
}
