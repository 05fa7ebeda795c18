// Package appshell adapts an app's RunContext to a process: signal-aware
// context, default help, and the exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the signature every app entry point implements.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Exit status used when SIGINT or SIGTERM ended the run.
const ExitCancelled = 130

// Main runs run with os.Args and exits. No arguments means -h.
func Main(run RunFunc) {
	os.Exit(Run(context.Background(), run, os.Args[1:], os.Stdout, os.Stderr))
}

// Run is Main without the process exit, for tests.
func Run(parent context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	code := run(ctx, argv, stdout, stderr)
	// Normalize cancellation exit code.
	if ctx.Err() != nil && code == 0 {
		code = ExitCancelled
	}
	return code
}
