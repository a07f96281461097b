package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/propscan/internal/cmd/output"
	"github.com/agentstation/propscan/pkg/constants"
)

// Execute runs the propscan CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "propscan",
		Short:   "Reconcile LUE dataset properties with a property service",
		Version: a.version,
		Long: `Propscan walks directories of LUE datasets, collects the internal path
of every property they hold and keeps a remote property collection in step:
missing properties are created, and records can be removed in bulk or by
resource link.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	// --rewrite_path and friends are accepted as spellings of --rewrite-path
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.propscan.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("token", "", "credential sent to the property service (env PROPSCAN_TOKEN)")
	flags.String("auth-header", "", "send the token in this header instead of as a bearer token")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "timeout for each request to the property service")
	flags.Float64("rate-limit", constants.DefaultRateLimit, "maximum requests per second to the property service (0 disables)")
	flags.String("metrics-file", "", "write run metrics in Prometheus textfile format to this path")

	// Add --output as deprecated alias for --format (backwards compatibility)
	flags.String("output", "", "")
	_ = flags.MarkDeprecated("output", "use --format instead")

	rootCmd.SetVersionTemplate("propscan {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if configFile := mustGetString(cmd, "config"); configFile != "" {
		config, err := LoadConfig(configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	if err := a.config.UpdateFromFlags(cmd.Flags()); err != nil {
		return err
	}

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}
	a.config.Format = string(output.DetectFormat(a.config.Format))

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateScanCommand())
	rootCmd.AddCommand(a.CreateRemoveCommand())
	rootCmd.AddCommand(a.CreateListCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// normalizeFlagName maps underscores in flag names to dashes.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
