// Package version provides the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/propscan/cmd/propscan/context"
	"github.com/agentstation/propscan/internal/cmd/output"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"build_date" yaml:"build_date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command.
func NewCommand(appCtx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   appCtx.Version(),
				Commit:    appCtx.Commit(),
				Date:      appCtx.Date(),
				BuiltBy:   appCtx.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			return output.NewFormatter(output.Format(appCtx.OutputFormat())).Format(cmd.OutOrStdout(), info)
		},
	}
}
