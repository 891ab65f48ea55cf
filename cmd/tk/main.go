package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-tracker/internal/cli"
	"task-tracker/internal/config"
)

func main() {
	// Interrupts cancel the running command; serve handles its own shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(config.NewLoader(), cli.BuildApp)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
