// Package reconciler brings a remote property collection in line with the
// properties found in local datasets. A scan-and-add run creates the
// records missing remotely; a remove run deletes all records, or the ones
// named by resource link. Both fetch the remote collection once and apply
// their changes strictly one at a time, stopping at the first failure.
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/agentstation/propscan/pkg/errors"
	"github.com/agentstation/propscan/pkg/logging"
	"github.com/agentstation/propscan/pkg/properties"
	"github.com/agentstation/propscan/pkg/remote"
	"github.com/agentstation/propscan/pkg/rewrite"
)

// Scanner discovers properties below filesystem roots.
type Scanner interface {
	ScanAll(ctx context.Context, roots ...string) ([]properties.DatasetProperty, error)
}

// Recorder receives run statistics.
type Recorder interface {
	Operation(operation, status string, n int)
	RunFinished(mode string, finished time.Time, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) Operation(string, string, int)                      {}
func (nopRecorder) RunFinished(string, time.Time, time.Duration, error) {}

// Operation statuses passed to Recorder.
const (
	statusOK      = "ok"
	statusError   = "error"
	statusPlanned = "planned"
)

// ScanRequest asks for a scan-and-add run.
type ScanRequest struct {
	// Paths are the files and directories to scan, in order.
	Paths []string

	// Rewrite is applied to every discovered dataset path before comparing.
	Rewrite rewrite.Rule
}

// RemoveRequest asks for a remove run.
type RemoveRequest struct {
	// Links selects records by resource link. Empty selects all records.
	Links []string
}

// Reconciler runs reconciliations against one remote collection.
type Reconciler struct {
	client   remote.Client
	scanner  Scanner
	dryRun   bool
	clock    clockwork.Clock
	logger   *zerolog.Logger
	recorder Recorder
}

// New creates a new Reconciler for client.
func New(client remote.Client, opts ...Option) (*Reconciler, error) {
	if client == nil {
		return nil, &errors.ValidationError{
			Field:   "client",
			Message: "cannot be nil",
		}
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Reconciler{
		client:   client,
		scanner:  options.scanner,
		dryRun:   options.dryRun,
		clock:    options.clock,
		logger:   options.logger,
		recorder: options.recorder,
	}, nil
}

// ScanAndAdd scans req.Paths, rewrites the dataset paths and creates every
// discovered property the remote collection lacks. Nothing is created when
// the collection cannot be listed.
func (r *Reconciler) ScanAndAdd(ctx context.Context, req ScanRequest) (*Result, error) {
	ctx, result := r.begin(ctx, ModeScan)
	logger := logging.FromContext(ctx)

	if r.scanner == nil {
		return r.finish(ctx, result, &errors.ValidationError{
			Field:   "scanner",
			Message: "a scanner is required to scan and add",
		})
	}

	result.Metadata.Phase = PhaseScan
	local, err := r.scanner.ScanAll(ctx, req.Paths...)
	if err != nil {
		return r.finish(ctx, result, err)
	}
	local = rewrite.Apply(local, req.Rewrite)
	result.Metadata.Stats.Discovered = len(local)
	logger.Info().
		Int("discovered", len(local)).
		Int("roots", len(req.Paths)).
		Str("rewrite", req.Rewrite.String()).
		Msg("Scanned datasets")

	existing, err := r.fetch(ctx, result)
	if err != nil {
		return r.finish(ctx, result, err)
	}

	result.Metadata.Phase = PhaseReconcileAdd
	plan := PlanAdditions(local, existing)
	result.Planned = plan.Create
	result.Skipped = plan.Skip
	r.recorder.Operation("skip", statusOK, len(plan.Skip))
	for _, p := range plan.Skip {
		logger.Debug().Str("property", p.String()).Msg("Property already present")
	}

	if r.dryRun {
		r.recorder.Operation("create", statusPlanned, len(plan.Create))
		for _, p := range plan.Create {
			logger.Info().Str("property", p.String()).Msg("Would create property")
		}
		return r.finish(ctx, result, nil)
	}

	result.Metadata.Phase = PhaseApply
	for _, p := range plan.Create {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, result, err)
		}

		created, err := r.client.Create(ctx, p)
		if err != nil {
			r.recorder.Operation("create", statusError, 1)
			return r.finish(ctx, result, errors.WrapResource("create", "property", p.String(), err))
		}
		r.recorder.Operation("create", statusOK, 1)
		result.Created = append(result.Created, *created)
		logger.Info().
			Str("property", p.String()).
			Str("link", created.Self()).
			Msg("Created property")
	}

	return r.finish(ctx, result, nil)
}

// Remove deletes the records selected by req. Every link is checked
// against the collection before anything is deleted.
func (r *Reconciler) Remove(ctx context.Context, req RemoveRequest) (*Result, error) {
	ctx, result := r.begin(ctx, ModeRemove)
	logger := logging.FromContext(ctx)

	existing, err := r.fetch(ctx, result)
	if err != nil {
		return r.finish(ctx, result, err)
	}

	result.Metadata.Phase = PhaseResolveTargets
	targets, err := ResolveTargets(existing, req.Links)
	if err != nil {
		return r.finish(ctx, result, err)
	}
	result.Targets = targets

	if r.dryRun {
		r.recorder.Operation("delete", statusPlanned, len(targets))
		for _, p := range targets {
			logger.Info().Str("link", p.Self()).Str("property", p.Key().String()).Msg("Would delete property")
		}
		return r.finish(ctx, result, nil)
	}

	result.Metadata.Phase = PhaseApply
	for _, p := range targets {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, result, err)
		}

		if err := r.client.Delete(ctx, p.Self()); err != nil {
			r.recorder.Operation("delete", statusError, 1)
			return r.finish(ctx, result, errors.WrapResource("delete", "property", p.Self(), err))
		}
		r.recorder.Operation("delete", statusOK, 1)
		result.Deleted = append(result.Deleted, p)
		logger.Info().Str("link", p.Self()).Msg("Deleted property")
	}

	return r.finish(ctx, result, nil)
}

// begin starts a run: it assigns the run id and tags the context logger.
func (r *Reconciler) begin(ctx context.Context, mode Mode) (context.Context, *Result) {
	if r.logger != nil {
		ctx = logging.WithLogger(ctx, r.logger)
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithOperation(ctx, string(mode))

	logging.FromContext(ctx).Debug().Bool("dry_run", r.dryRun).Msg("Starting run")
	return ctx, newResult(runID, mode, r.dryRun, r.clock.Now())
}

// fetch lists the remote collection once.
func (r *Reconciler) fetch(ctx context.Context, result *Result) ([]properties.RemoteProperty, error) {
	result.Metadata.Phase = PhaseFetchRemote
	existing, err := r.client.List(ctx)
	if err != nil {
		return nil, err
	}
	result.Metadata.Stats.Remote = len(existing)
	return existing, nil
}

// finish finalizes the result and reports err, if any.
func (r *Reconciler) finish(ctx context.Context, result *Result, err error) (*Result, error) {
	result.finalize(r.clock.Now(), err)
	r.recorder.RunFinished(string(result.Metadata.Mode), result.Metadata.EndTime, result.Metadata.Duration, err)

	logger := logging.FromContext(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Str("phase", string(result.Metadata.FailedIn)).
			Int("created", len(result.Created)).
			Int("deleted", len(result.Deleted)).
			Msg("Run failed")
		return result, err
	}

	logger.Info().
		Dur("duration", result.Metadata.Duration).
		Msg(result.Summary())
	return result, nil
}
