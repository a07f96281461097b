package reconciler

// Phase is the stage a run has reached.
type Phase string

// Phases of a run. A scan-and-add run moves through scan, fetch-remote,
// reconcile-add and apply; a remove run through fetch-remote,
// resolve-targets and apply. Both end in done or failed.
const (
	PhaseStart          Phase = "start"
	PhaseScan           Phase = "scan"
	PhaseFetchRemote    Phase = "fetch-remote"
	PhaseReconcileAdd   Phase = "reconcile-add"
	PhaseResolveTargets Phase = "resolve-targets"
	PhaseApply          Phase = "apply"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// Mode names the kind of run.
type Mode string

// Run modes.
const (
	ModeScan   Mode = "scan"
	ModeRemove Mode = "remove"
)
