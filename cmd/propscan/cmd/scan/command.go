// Package scan provides the scan command, which creates remote records for
// the properties found in local datasets.
package scan

import (
	stdctx "context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/propscan/cmd/propscan/context"
	"github.com/agentstation/propscan/internal/cmd/output"
	"github.com/agentstation/propscan/pkg/reconciler"
	"github.com/agentstation/propscan/pkg/rewrite"
)

// Flags holds the scan command flags.
type Flags struct {
	RewritePath string
	RewriteMode string
	Exclude     []string
	DryRun      bool
	Strict      bool
}

// NewCommand creates the scan command.
func NewCommand(appCtx context.Context) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "scan <uri> <path>...",
		GroupID: "core",
		Short:   "Add the properties of local datasets to a property collection",
		Long: `Scan walks each path, opens every file as a LUE dataset and collects
the internal path of each property in its phenomena and universes.
Properties missing from the collection at <uri> are created, in the order
they were found; properties already present are left alone.

Files that are not LUE datasets are skipped. Paths that cannot be read are
reported and skipped unless --strict is given. Entries matching an
--exclude pattern are not visited.

--rewrite-path replaces the leading <from> of every dataset path with <to>
before comparing, so datasets mounted elsewhere map onto existing records.`,
		Example: `  propscan scan http://localhost:5000/api/properties /data
  propscan scan http://localhost:5000/api/properties --rewrite-path=/data:/mnt/data /data
  propscan scan http://localhost:5000/api/properties --dry-run a.lue b.lue`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), appCtx, cmd.OutOrStdout(), args[0], args[1:], flags)
		},
	}

	cmd.Flags().StringVar(&flags.RewritePath, "rewrite-path", "",
		"rewrite dataset paths, as <from>:<to>")
	cmd.Flags().StringVar(&flags.RewriteMode, "rewrite-mode", string(rewrite.ModePrefix),
		"how --rewrite-path applies: prefix or replace-all")
	cmd.Flags().StringArrayVar(&flags.Exclude, "exclude", nil,
		"skip entries matching a glob, or a regex given as re:<pattern> (repeatable)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"show what would be created without creating anything")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false,
		"fail on unreadable paths instead of skipping them")

	return cmd
}

// Run scans paths and adds what is missing from the collection at uri.
func Run(ctx stdctx.Context, appCtx context.Context, w io.Writer, uri string, paths []string, flags *Flags) error {
	rule, err := rewrite.ParseRule(flags.RewritePath)
	if err != nil {
		return err
	}
	if rule.Mode, err = rewrite.ParseMode(flags.RewriteMode); err != nil {
		return err
	}

	client, err := appCtx.Remote(uri)
	if err != nil {
		return err
	}
	scanner, err := appCtx.Scanner(flags.Strict, flags.Exclude...)
	if err != nil {
		return err
	}

	r, err := reconciler.New(client,
		reconciler.WithScanner(scanner),
		reconciler.WithDryRun(flags.DryRun),
		reconciler.WithRecorder(appCtx.Recorder()),
		reconciler.WithLogger(appCtx.Logger()),
	)
	if err != nil {
		return err
	}

	result, err := r.ScanAndAdd(ctx, reconciler.ScanRequest{
		Paths:   paths,
		Rewrite: rule,
	})
	if err != nil {
		return err
	}

	if appCtx.Quiet() {
		return nil
	}
	return output.FormatResult(w, result, output.Format(appCtx.OutputFormat()))
}
