package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	iecsizecmd "iecsize/internal/cli/cmd"
	"iecsize/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := iecsizecmd.Execute(ctx)
	logger.Sync()
	if err != nil {
		var ee *iecsizecmd.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, ee.Err)
			}
			os.Exit(ee.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(iecsizecmd.ExitCLIError)
	}
	os.Exit(iecsizecmd.ExitOK)
}
