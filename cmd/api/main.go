// Package main is the entry point for the Viewpoint Explorer API.
// Its sole responsibility is wiring dependencies together and running the
// selected command. No business logic belongs here.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCommand assembles the command tree. Each subcommand owns its own
// viper instance so flags never leak between commands.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "viewpoints",
		Short:         "Viewpoint Explorer API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}
