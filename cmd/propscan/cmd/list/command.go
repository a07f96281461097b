// Package list provides the list command.
package list

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/propscan/cmd/propscan/context"
	"github.com/agentstation/propscan/internal/cmd/output"
)

// NewCommand creates the list command.
func NewCommand(appCtx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "list <uri>",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List the records of a property collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appCtx.Remote(args[0])
			if err != nil {
				return err
			}

			props, err := client.List(cmd.Context())
			if err != nil {
				return err
			}
			appCtx.Logger().Debug().Int("count", len(props)).Msg("Listed properties")

			return output.FormatProperties(cmd.OutOrStdout(), props, output.Format(appCtx.OutputFormat()))
		},
	}
}
