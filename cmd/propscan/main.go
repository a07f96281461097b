// Package main provides the entry point for the propscan CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/propscan/cmd/propscan/app"
	"github.com/agentstation/propscan/pkg/constants"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	err = application.Execute(ctx, os.Args[1:])

	// Shut down with a fresh context; the signal context may be cancelled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		// Don't let a shutdown error mask the original error
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}

	if err != nil {
		cancel()
		shutdownCancel()
		app.ExitOnError(err)
	}
}
