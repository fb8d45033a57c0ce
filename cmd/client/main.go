package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/docsync/internal/client/app"
	"github.com/dmitrijs2005/docsync/internal/client/config"
	"github.com/dmitrijs2005/docsync/internal/flagx"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	log := app.NewLogger(os.Stderr, cfg.Level())
	a, err := app.New(ctx, cfg, log, os.Stdout)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		return 1
	}
	defer a.Close()

	if err := a.Run(ctx, flagx.Positional(args, config.ValueFlags)); err != nil {
		if errors.Is(err, app.ErrUsage) || errors.Is(err, app.ErrUnknownCommand) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		log.Error(ctx, "command failed", "error", err)
		return 1
	}
	return 0
}
