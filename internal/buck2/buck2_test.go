package buck2

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaforge/buckshift/pkg/types"
)

func TestResolve_Override(t *testing.T) {
	got, err := Resolve("/opt/buck2/bin/buck2")
	require.NoError(t, err)
	assert.Equal(t, "/opt/buck2/bin/buck2", got)
}

func TestResolve_NotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := Resolve("")
	assert.ErrorIs(t, err, types.ErrBuck2NotFound)
}

func TestResolve_Path(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "buck2")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)

	got, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, bin, got)
}

func TestRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake executable script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "buck2")
	script := "#!/bin/sh\necho /work/project\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	c := NewClient(bin, dir)
	root, err := c.Root(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/work/project", root)
}
