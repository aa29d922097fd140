package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fleet-console/fleet-console/internal/logging"
)

const exitCodeCanceled = 130

func main() {
	if code := runMain(Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}
	code, message, silent := classifyExit(err)
	if !silent {
		emitCommandError(unwrapExitError(err), message, code, stderr)
	}
	return code
}

// classifyExit maps a command error to its process exit code and log message.
func classifyExit(err error) (code int, message string, silent bool) {
	var ee *exitError
	switch {
	case errors.As(err, &ee):
		return ee.code, "command failed", ee.silent
	case errors.Is(err, context.Canceled):
		return exitCodeCanceled, "command canceled", false
	default:
		return 1, "command failed", false
	}
}

func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	ctx := currentCommandExecutionContext()
	if ctx.UsesStructuredLog {
		loggerForFatalPath(ctx, stderr).Error(message, "exit_code", exitCode, "error", err)
		return
	}
	switch exitCode {
	case exitCodeCanceled:
		fmt.Fprintln(stderr, "canceled")
	case exitCodeUsage:
		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", commandPathOrApp(ctx))
	default:
		fmt.Fprintln(stderr, err)
	}
}

// loggerForFatalPath falls back to the default JSON config when LOG_* is
// itself the cause of the failure.
func loggerForFatalPath(ctx commandExecutionContext, stderr io.Writer) *slog.Logger {
	cfg, err := logging.LoadConfigFromEnv()
	if err != nil {
		cfg = logging.DefaultConfig()
	}
	return logging.NewLogger(cfg, stderr, ctx.CommandPath)
}

func commandPathOrApp(ctx commandExecutionContext) string {
	if ctx.CommandPath != "" {
		return ctx.CommandPath
	}
	return logging.AppName
}

func unwrapExitError(err error) error {
	var ee *exitError
	if errors.As(err, &ee) && ee.err != nil {
		return ee.err
	}
	return err
}
