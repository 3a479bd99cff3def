package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/style"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := style.NewPrinter(os.Stderr)
	defer func() {
		if r := recover(); r != nil {
			code = errors.ExitUnexpected
			printer.Fatal(fmt.Errorf("panic: %v", r), code)
		}
	}()

	app := NewApp()
	rootCmd := NewRootCmd(app)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}

	code = errors.ExitCode(err)
	printer.Fatal(err, code)
	if errors.IsErrorCode(err, errors.ErrUsage) {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, rootCmd.UsageString())
	}
	return code
}
