package buckfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderList(t *testing.T) {
	assert.Equal(t, "[]", renderList(nil, 1))
	assert.Equal(t, "[\n        \"a\",\n    ]", renderList([]string{"a"}, 1))
	// Entries are sorted regardless of input order.
	assert.Equal(t,
		"[\n        \"a\",\n        \"b\",\n    ]",
		renderList([]string{"b", "a"}, 1))
}

func TestRenderStrMap(t *testing.T) {
	got := renderStrMap(map[string]string{"b": "2", "a": "1"}, 1)
	assert.Equal(t, "{\n        \"a\": \"1\",\n        \"b\": \"2\",\n    }", got)
}

func TestRenderListMap(t *testing.T) {
	got := renderListMap(map[string][]string{
		"windows": {"//x:y"},
	}, 1)
	assert.Equal(t,
		"{\n        \"windows\": [\n            \"//x:y\",\n        ],\n    }",
		got)
}

func TestLoadRender(t *testing.T) {
	l := &Load{Bzl: "@buckshift//:wrapper.bzl", Items: []string{"rust_test", "rust_library"}}
	assert.Equal(t,
		"load(\"@buckshift//:wrapper.bzl\", \"rust_library\", \"rust_test\")\n",
		l.Render())
}

func TestRustRuleRender(t *testing.T) {
	r := &RustRule{
		Function:   FnRustLibrary,
		Name:       "libc",
		Srcs:       []string{":libc-vendor"},
		Crate:      "libc",
		CrateRoot:  "vendor/src/lib.rs",
		Edition:    "2015",
		Features:   []string{"std", "default"},
		RustcFlags: []string{"@$(location :libc-manifest[env_flags])"},
		Visibility: []string{"PUBLIC"},
	}
	got := r.Render()
	want := `rust_library(
    name = "libc",
    srcs = [
        ":libc-vendor",
    ],
    crate = "libc",
    crate_root = "vendor/src/lib.rs",
    edition = "2015",
    features = [
        "default",
        "std",
    ],
    rustc_flags = [
        "@$(location :libc-manifest[env_flags])",
    ],
    visibility = [
        "PUBLIC",
    ],
)
`
	assert.Equal(t, want, got)
}

func TestRustRuleRender_CrossSelect(t *testing.T) {
	r := &RustRule{
		Function:             FnRustTest,
		Name:                 "cli",
		TargetCompatibleWith: CrossSelect,
	}
	assert.Contains(t, r.Render(),
		`target_compatible_with = select({"//platforms:cross": ["config//:none"], "DEFAULT": []}),`)
}

func TestFileRender_Loads(t *testing.T) {
	f := &File{Rules: []Rule{
		&CargoManifest{Name: "demo-manifest", Vendor: ":demo-vendor"},
		&RustRule{Function: FnRustLibrary, Name: "demo"},
		&BuildscriptRun{Name: "demo-build-script-run"},
	}}
	got := f.Render()
	assert.Contains(t, got, "# @generated by `buckshift`\n")
	assert.Contains(t, got,
		"load(\"@buckshift//:cargo_manifest.bzl\", \"cargo_manifest\")\n")
	assert.Contains(t, got,
		"load(\"@buckshift//:wrapper.bzl\", \"buildscript_run\", \"rust_library\")\n")
}

func TestFileRender_Deterministic(t *testing.T) {
	f := &File{Rules: []Rule{
		&RustRule{
			Function: FnRustLibrary,
			Name:     "demo",
			OSDeps: map[string][]string{
				"windows": {"//b:b", "//a:a"},
				"linux":   {"//c:c"},
			},
			Env: map[string]string{"B": "2", "A": "1"},
		},
	}}
	first := f.Render()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Render())
	}
}
