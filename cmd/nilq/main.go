// Command nilq computes nilpotent quotients of finitely presented Lie rings
// and groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/nilq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nilq:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps run errors onto process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, nilq.ErrInput):
		return 2
	case errors.Is(err, nilq.ErrUnsupported):
		return 3
	case errors.Is(err, nilq.ErrInvariant):
		return 4
	case errors.Is(err, nilq.ErrCanceled):
		return 130
	}
	return 1
}
