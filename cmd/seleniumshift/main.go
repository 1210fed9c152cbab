// File: cmd/seleniumshift/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xkilldash9x/seleniumshift/cmd"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
)

const panicLogFile = "seleniumshift-panic.log"

var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	loadEnv     = func() error { return godotenv.Load() }
)

func main() {
	defer handlePanic()

	if err := loadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	osExit(exitCode(cmd.Execute(ctx)))
}

// exitCode maps a command error to the process status. An interrupt is a
// clean exit.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, cmd.ErrCheckFailed):
		return 1
	default:
		return 2
	}
}

// handlePanic writes the panic and its stack to panicLogFile and exits.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	msg := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(msg), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n%s\n", err, msg)
	} else {
		fmt.Fprintf(os.Stderr, "seleniumshift crashed; details written to %s\n", panicLogFile)
	}
	osExit(3)
}
