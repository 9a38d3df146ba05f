package cfgexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSnapshot is a test snapshot: bare keys map to nil, keyed facts to a
// value set.
type fakeSnapshot map[string]map[string]bool

func (s fakeSnapshot) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s fakeSnapshot) HasValue(key, value string) bool {
	return s[key][value]
}

var linuxSnap = fakeSnapshot{
	"unix":          nil,
	"target_os":     {"linux": true},
	"target_family": {"unix": true},
	"target_env":    {"gnu": true},
}

var windowsSnap = fakeSnapshot{
	"windows":       nil,
	"target_os":     {"windows": true},
	"target_family": {"windows": true},
	"target_env":    {"msvc": true},
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		predicate string
		want      Expr
	}{
		{
			"bare key",
			`cfg(unix)`,
			Atom{Key: "unix"},
		},
		{
			"key equals value",
			`cfg(target_os = "windows")`,
			Atom{Key: "target_os", Value: "windows", HasValue: true},
		},
		{
			"without cfg wrapper",
			`target_os = "linux"`,
			Atom{Key: "target_os", Value: "linux", HasValue: true},
		},
		{
			"not",
			`cfg(not(windows))`,
			Not{Expr: Atom{Key: "windows"}},
		},
		{
			"all of two",
			`cfg(all(unix, not(target_os = "macos")))`,
			All{Exprs: []Expr{
				Atom{Key: "unix"},
				Not{Expr: Atom{Key: "target_os", Value: "macos", HasValue: true}},
			}},
		},
		{
			"any of three",
			`cfg(any(target_os = "linux", target_os = "macos", target_os = "windows"))`,
			Any{Exprs: []Expr{
				Atom{Key: "target_os", Value: "linux", HasValue: true},
				Atom{Key: "target_os", Value: "macos", HasValue: true},
				Atom{Key: "target_os", Value: "windows", HasValue: true},
			}},
		},
		{
			"trailing comma in list",
			`cfg(any(unix,))`,
			Any{Exprs: []Expr{Atom{Key: "unix"}}},
		},
		{
			"empty all is true",
			`cfg(all())`,
			All{},
		},
		{
			"nested",
			`cfg(all(any(target_os = "linux", target_os = "android"), not(target_env = "musl")))`,
			All{Exprs: []Expr{
				Any{Exprs: []Expr{
					Atom{Key: "target_os", Value: "linux", HasValue: true},
					Atom{Key: "target_os", Value: "android", HasValue: true},
				}},
				Not{Expr: Atom{Key: "target_env", Value: "musl", HasValue: true}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.predicate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, predicate := range []string{
		`cfg(`,
		`cfg(all(unix)`,
		`cfg(target_os = )`,
		`cfg(target_os = "linux)`,
		`cfg(unix) extra`,
		`cfg(,)`,
		``,
	} {
		t.Run(predicate, func(t *testing.T) {
			_, err := Parse(predicate)
			assert.Error(t, err)
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name        string
		predicate   string
		wantLinux   bool
		wantWindows bool
	}{
		{`cfg(unix)`, `cfg(unix)`, true, false},
		{`cfg(windows)`, `cfg(windows)`, false, true},
		{`target_os windows`, `cfg(target_os = "windows")`, false, true},
		{`not windows`, `cfg(not(windows))`, true, false},
		{`all unix gnu`, `cfg(all(unix, target_env = "gnu"))`, true, false},
		{`any linux or windows`, `cfg(any(target_os = "linux", target_os = "windows"))`, true, true},
		{`unknown value`, `cfg(target_os = "android")`, false, false},
		{`empty all`, `cfg(all())`, true, true},
		{`empty any`, `cfg(any())`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.predicate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLinux, expr.Eval(linuxSnap), "linux")
			assert.Equal(t, tt.wantWindows, expr.Eval(windowsSnap), "windows")
		})
	}
}

func TestAtoms(t *testing.T) {
	expr, err := Parse(`cfg(all(any(unix, target_os = "macos"), not(target_env = "musl")))`)
	require.NoError(t, err)

	atoms := Atoms(expr)
	require.Len(t, atoms, 3)
	assert.Equal(t, "unix", atoms[0].Key)
	assert.Equal(t, "target_os", atoms[1].Key)
	assert.Equal(t, "target_env", atoms[2].Key)
}
