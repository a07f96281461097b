// Package remove provides the remove command.
package remove

import (
	stdctx "context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/propscan/cmd/propscan/context"
	"github.com/agentstation/propscan/internal/cmd/output"
	"github.com/agentstation/propscan/pkg/reconciler"
)

// Flags holds the remove command flags.
type Flags struct {
	DryRun bool
}

// NewCommand creates the remove command.
func NewCommand(appCtx context.Context) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "remove <uri> [<link>...]",
		Aliases: []string{"clear"},
		GroupID: "core",
		Short:   "Remove properties from a property collection",
		Long: `Remove deletes records from the property collection at <uri>.

Without links every record is deleted. With links, only the records whose
resource link matches exactly are deleted; if any link names no record,
nothing is deleted.`,
		Example: `  propscan remove http://localhost:5000/api/properties
  propscan remove http://localhost:5000/api/properties /api/properties/3 /api/properties/7
  propscan clear --dry-run http://localhost:5000/api/properties`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), appCtx, cmd.OutOrStdout(), args[0], args[1:], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"show what would be deleted without deleting anything")

	return cmd
}

// Run removes the records named by links, or all records.
func Run(ctx stdctx.Context, appCtx context.Context, w io.Writer, uri string, links []string, flags *Flags) error {
	client, err := appCtx.Remote(uri)
	if err != nil {
		return err
	}

	r, err := reconciler.New(client,
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithRecorder(appCtx.Recorder()),
		reconciler.WithLogger(appCtx.Logger()),
	)
	if err != nil {
		return err
	}

	result, err := r.Remove(ctx, reconciler.RemoveRequest{Links: links})
	if err != nil {
		return err
	}

	if appCtx.Quiet() {
		return nil
	}
	return output.FormatResult(w, result, output.Format(appCtx.OutputFormat()))
}
