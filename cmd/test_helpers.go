package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/spf13/cobra"
)

// SetupCommandContext attaches an App to the command context the same way
// Execute does for the real binary.
func SetupCommandContext(cmd *cobra.Command, app *App) {
	cmd.SetContext(context.WithValue(context.Background(), appContextKey, app))
}

// ExecuteCommand runs a cobra command with the given arguments.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, args []string) error {
	t.Helper()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// ExecuteCommandWithCapture runs a cobra command and returns everything it
// wrote. Commands print through fmt as well as through cobra's writers, so
// both os.Stdout and the command buffers are collected.
func ExecuteCommandWithCapture(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()

	var cobraOut bytes.Buffer
	cmd.SetOut(&cobraOut)
	cmd.SetErr(&cobraOut)
	cmd.SetArgs(args)

	var err error
	captured := captureStdio(t, func() {
		err = cmd.Execute()
	})

	return captured + cobraOut.String(), err
}

// captureStdio redirects os.Stdout and os.Stderr around fn and returns what
// was written. The redirection happens at the file-descriptor level so that
// writers which grabbed os.Stdout before the test started (package defaults
// such as table.DefaultWriter or color.Output) are captured too.
func captureStdio(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	savedStdoutFD, err := syscall.Dup(1)
	if err != nil {
		t.Fatalf("dup stdout: %v", err)
	}
	savedStderrFD, err := syscall.Dup(2)
	if err != nil {
		t.Fatalf("dup stderr: %v", err)
	}
	if err := syscall.Dup3(int(w.Fd()), 1, 0); err != nil {
		t.Fatalf("redirect stdout: %v", err)
	}
	if err := syscall.Dup3(int(w.Fd()), 2, 0); err != nil {
		t.Fatalf("redirect stderr: %v", err)
	}
	os.Stdout = w
	os.Stderr = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = oldStdout
	os.Stderr = oldStderr
	_ = syscall.Dup3(savedStdoutFD, 1, 0)
	_ = syscall.Dup3(savedStderrFD, 2, 0)
	_ = syscall.Close(savedStdoutFD)
	_ = syscall.Close(savedStderrFD)
	_ = w.Close()

	return <-outputCh
}
