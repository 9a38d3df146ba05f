// Shared helpers for buckshift CLI commands.
package main

import (
	"context"
	"errors"

	"github.com/dukaforge/buckshift/internal/buck2"
	"github.com/dukaforge/buckshift/internal/pipeline"
)

// errConflicts signals a non-zero exit after a report with skipped or failed
// files. The per-file details were already printed by Report.Print.
var errConflicts = errors.New("some generated files were skipped or failed")

// withPipeline opens a pipeline at the resolved workspace root, runs fn, and
// prints the resulting report. Conflicts map to a non-zero exit.
func withPipeline(ctx context.Context, fn func(*pipeline.Pipeline) (*pipeline.Report, error)) error {
	root, err := resolveRoot(ctx)
	if err != nil {
		return err
	}

	p, err := pipeline.Open(ctx, root)
	if err != nil {
		return err
	}
	defer p.Close()

	report, err := fn(p)
	if report != nil {
		report.Print()
	}
	if err != nil {
		return err
	}
	if report.HasConflicts() {
		return errConflicts
	}
	return nil
}

// buck2Client resolves the buck2 binary and the workspace root and returns a
// client ready to run commands there.
func buck2Client(ctx context.Context) (*buck2.Client, error) {
	bin, err := buck2.Resolve(userConfig.Buck2Binary)
	if err != nil {
		return nil, err
	}
	root, err := resolveRoot(ctx)
	if err != nil {
		return nil, err
	}
	return buck2.NewClient(bin, root), nil
}
