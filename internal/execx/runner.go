// Package execx abstracts external command execution so callers can be
// tested without shelling out.
package execx

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
// Implementations must honor context cancellation.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealRunner runs commands through os/exec.
type RealRunner struct{}

// NewRealRunner creates a new RealRunner.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// CombinedOutput runs the command and returns interleaved stdout and stderr,
// which is where validation tools like nginx -t write their diagnostics.
func (r *RealRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
