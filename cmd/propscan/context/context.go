// Package context provides the application context interface for propscan commands.
//
// The Context interface is the contract between the application layer and
// command implementations. Commands accept it rather than the concrete App
// so they can be tested with MockContext.
//
// Usage in Commands:
//
//	func NewCommand(appCtx context.Context) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := appCtx.Remote(args[0])
//	            if err != nil {
//	                return err
//	            }
//	            // ... use client
//	            return nil
//	        },
//	    }
//	}
package context

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/reconciler"
	"github.com/agentstation/propscan/pkg/remote"
)

// Context provides what commands need from the application.
// The App struct from cmd/propscan/app implements this interface.
type Context interface {
	// Remote returns a client for the property collection at collectionURI,
	// configured with the credentials, timeout and pacing from the config.
	Remote(collectionURI string) (remote.Client, error)

	// Scanner returns a dataset scanner. With strict set, unreadable paths
	// fail the scan instead of being skipped; entries matching an exclude
	// pattern are not visited.
	Scanner(strict bool, exclude ...string) (reconciler.Scanner, error)

	// Recorder returns where run statistics are recorded.
	Recorder() reconciler.Recorder

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Quiet reports whether only errors should be printed.
	Quiet() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
