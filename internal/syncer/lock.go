package syncer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dukaforge/buckshift/internal/state"
	"github.com/dukaforge/buckshift/pkg/types"
)

// Lock takes the workspace advisory lock, so two mutating invocations cannot
// interleave their file writes. A lock file left behind by a process that no
// longer exists is reclaimed. The returned release function removes the
// lock; it is safe to call once.
func Lock(root string) (func(), error) {
	dir := filepath.Join(root, state.DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, "lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) && staleLock(path) {
		os.Remove(path)
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	}
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: another invocation holds %s (delete the file if its process is gone)",
				types.ErrLocked, path)
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	fmt.Fprintln(f, strconv.Itoa(os.Getpid()))
	f.Close()

	return func() { os.Remove(path) }, nil
}

// staleLock reports whether the lock file names a process that no longer
// exists. An unreadable or malformed pid is never treated as stale.
func staleLock(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	err = proc.Signal(syscall.Signal(0))
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}
