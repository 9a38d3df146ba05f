// Package buck2 wraps the buck2 binary for the handful of invocations
// buckshift delegates: build, test, clean, and project-root discovery.
package buck2

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dukaforge/buckshift/pkg/types"
)

// Resolve finds the buck2 binary. A non-empty override (from the user
// config) wins; otherwise PATH is searched.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	path, err := exec.LookPath("buck2")
	if err != nil {
		return "", fmt.Errorf("%w: not on PATH and no binary configured", types.ErrBuck2NotFound)
	}
	return path, nil
}

// Client runs buck2 commands in a fixed working directory.
type Client struct {
	bin string
	dir string
}

// NewClient builds a client for the given binary and working directory.
func NewClient(bin, dir string) *Client {
	return &Client{bin: bin, dir: dir}
}

// Build runs `buck2 build` with the given targets and extra args.
func (c *Client) Build(ctx context.Context, args ...string) error {
	return c.run(ctx, append([]string{"build"}, args...)...)
}

// Test runs `buck2 test` with the given targets and extra args.
func (c *Client) Test(ctx context.Context, args ...string) error {
	return c.run(ctx, append([]string{"test"}, args...)...)
}

// Clean runs `buck2 clean`.
func (c *Client) Clean(ctx context.Context) error {
	return c.run(ctx, "clean")
}

// Root returns the buck2 project root for the client's directory.
func (c *Client) Root(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, "root", "--kind", "project")
	cmd.Dir = c.dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("buck2 root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *Client) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = c.dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("buck2 %s: %w", args[0], err)
	}
	return nil
}
