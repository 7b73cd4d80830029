// Package fakerunner provides an in-memory execx.Runner for tests.
package fakerunner

import (
	"context"
	"strings"
)

// response is the canned result for one exact command line.
type response struct {
	output []byte
	err    error
}

// Call is one recorded command execution.
type Call struct {
	Name string
	Args []string
}

// Runner records every command it is asked to run and replays canned
// responses keyed by the full command line.
type Runner struct {
	responses map[string]response
	calls     []Call
}

// New creates an empty fake runner.
func New() *Runner {
	return &Runner{responses: make(map[string]response)}
}

func commandKey(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

// SetOutput cans the output returned for the given command line.
func (r *Runner) SetOutput(name string, args []string, output []byte) {
	key := commandKey(name, args)
	resp := r.responses[key]
	resp.output = output
	r.responses[key] = resp
}

// SetError cans the error returned for the given command line. Output canned
// for the same command line is still returned, matching how CombinedOutput
// carries diagnostics alongside a failure.
func (r *Runner) SetError(name string, args []string, err error) {
	key := commandKey(name, args)
	resp := r.responses[key]
	resp.err = err
	r.responses[key] = resp
}

// CombinedOutput implements execx.Runner.
func (r *Runner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, Call{Name: name, Args: args})

	if resp, ok := r.responses[commandKey(name, args)]; ok {
		return resp.output, resp.err
	}
	return []byte{}, nil
}

// GetCalls returns the recorded command executions in order.
func (r *Runner) GetCalls() []Call {
	return r.calls
}

// Reset drops all canned responses and recorded calls.
func (r *Runner) Reset() {
	r.responses = make(map[string]response)
	r.calls = nil
}
