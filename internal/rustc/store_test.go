package rustc

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/buckshift/internal/state"
)

const linuxCfgDump = `debug_assertions
panic="unwind"
target_abi=""
target_arch="x86_64"
target_env="gnu"
target_family="unix"
target_os="linux"
target_pointer_width="64"
target_vendor="unknown"
unix
`

const windowsCfgDump = `debug_assertions
target_env="msvc"
target_family="windows"
target_os="windows"
windows
`

func TestParseCfgDump(t *testing.T) {
	snap := ParseCfgDump(linuxCfgDump)

	assert.True(t, snap.Has("unix"))
	assert.False(t, snap.Has("windows"))
	assert.True(t, snap.HasValue("target_os", "linux"))
	assert.False(t, snap.HasValue("target_os", "windows"))
	assert.True(t, snap.HasValue("target_env", "gnu"))
	// Bare flags match presence but no particular value.
	assert.False(t, snap.HasValue("unix", "1"))
}

func TestParseCfgDump_SkipsGarbage(t *testing.T) {
	snap := ParseCfgDump("target_os=unquoted\n\n  \ntarget_os=\"linux\"\n")
	assert.Equal(t, []string{"linux"}, snap.Facts()["target_os"])
}

func attachedStates(t *testing.T) *state.Store {
	t.Helper()
	s := state.New()
	require.NoError(t, s.Attach(t.TempDir()))
	t.Cleanup(func() { s.Detach() })
	return s
}

func TestStore_GetCachesInStateDB(t *testing.T) {
	states := attachedStates(t)

	var dumps atomic.Int32
	run := func(ctx context.Context, args ...string) ([]byte, error) {
		dumps.Add(1)
		if strings.Contains(strings.Join(args, " "), "windows") {
			return []byte(windowsCfgDump), nil
		}
		return []byte(linuxCfgDump), nil
	}

	s := newTestStore(states, "rustc 1.80.0", run)
	ctx := context.Background()

	snap, err := s.Get(ctx, "x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	assert.True(t, snap.HasValue("target_os", "linux"))
	assert.Equal(t, int32(1), dumps.Load())

	// Second Get hits the in-memory cache.
	_, err = s.Get(ctx, "x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	assert.Equal(t, int32(1), dumps.Load())

	// A fresh store over the same state DB hits the persisted cache, not
	// the compiler.
	s2 := newTestStore(states, "rustc 1.80.0", run)
	snap2, err := s2.Get(ctx, "x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	assert.True(t, snap2.HasValue("target_os", "linux"))
	assert.Equal(t, int32(1), dumps.Load())

	// A different compiler version invalidates the cache key.
	s3 := newTestStore(states, "rustc 1.81.0", run)
	_, err = s3.Get(ctx, "x86_64-unknown-linux-gnu")
	require.NoError(t, err)
	assert.Equal(t, int32(2), dumps.Load())
}

func TestStore_Warm(t *testing.T) {
	states := attachedStates(t)

	run := func(ctx context.Context, args ...string) ([]byte, error) {
		if strings.Contains(strings.Join(args, " "), "windows") {
			return []byte(windowsCfgDump), nil
		}
		return []byte(linuxCfgDump), nil
	}
	s := newTestStore(states, "rustc 1.80.0", run)

	triples := []string{
		"x86_64-unknown-linux-gnu",
		"aarch64-unknown-linux-gnu",
		"x86_64-pc-windows-msvc",
	}
	require.NoError(t, s.Warm(context.Background(), triples))

	for _, triple := range triples {
		snap, err := s.Get(context.Background(), triple)
		require.NoError(t, err)
		assert.True(t, snap.Has("target_os"), triple)
	}
}
