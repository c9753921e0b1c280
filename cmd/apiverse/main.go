package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"Apiverse/internal/console"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := console.NewApp(os.Stdout, os.Stderr, os.Stdin)
	if err := app.RunContext(ctx, os.Args); err != nil {
		code := console.ExitFailure
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		stop()
		os.Exit(code)
	}
}
