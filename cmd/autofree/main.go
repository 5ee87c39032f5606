// Package main implements the autofree CLI. It infers where heap
// allocations in a C file can be released and inserts the release calls.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/l3aro/autofree/cmd/autofree/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (" + buildTime + ")"
	}
	commands.RootCmd.SetVersionTemplate(`autofree version {{.Version}}
`)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.RootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
