package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/propscan/pkg/properties"
)

// Result represents the outcome of a run. A failed run still returns its
// Result, recording what was applied before the failure.
type Result struct {
	// Core data
	Planned []properties.DatasetProperty `json:"planned,omitempty" yaml:"planned,omitempty"`
	Created []properties.RemoteProperty  `json:"created,omitempty" yaml:"created,omitempty"`
	Skipped []properties.DatasetProperty `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Targets []properties.RemoteProperty  `json:"targets,omitempty" yaml:"targets,omitempty"`
	Deleted []properties.RemoteProperty  `json:"deleted,omitempty" yaml:"deleted,omitempty"`

	// Metadata
	Metadata ResultMetadata `json:"metadata" yaml:"metadata"`

	// Err is the error that ended a failed run.
	Err error `json:"-" yaml:"-"`
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Mode      Mode          `json:"mode" yaml:"mode"`
	Phase     Phase         `json:"phase" yaml:"phase"`
	FailedIn  Phase         `json:"failed_in,omitempty" yaml:"failed_in,omitempty"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Stats     ResultStats   `json:"stats" yaml:"stats"`
}

// ResultStats counts what a run saw and did.
type ResultStats struct {
	Discovered int `json:"discovered" yaml:"discovered"`
	Remote     int `json:"remote" yaml:"remote"`
	Planned    int `json:"planned" yaml:"planned"`
	Created    int `json:"created" yaml:"created"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Targets    int `json:"targets" yaml:"targets"`
	Deleted    int `json:"deleted" yaml:"deleted"`
}

// IsSuccess returns true if the run completed.
func (r *Result) IsSuccess() bool {
	return r.Err == nil && r.Metadata.Phase == PhaseDone
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	if !r.IsSuccess() {
		return fmt.Sprintf("Run failed during %s: %v", r.Metadata.FailedIn, r.Err)
	}

	switch r.Metadata.Mode {
	case ModeRemove:
		if r.Metadata.DryRun {
			return fmt.Sprintf("Dry run completed. %d of %d properties would be deleted.", s.Targets, s.Remote)
		}
		return fmt.Sprintf("Removal completed. %d properties deleted.", s.Deleted)
	default:
		if r.Metadata.DryRun {
			return fmt.Sprintf("Dry run completed. %d discovered, %d would be created, %d already present.",
				s.Discovered, s.Planned, s.Skipped)
		}
		return fmt.Sprintf("Scan completed. %d discovered, %d created, %d already present.",
			s.Discovered, s.Created, s.Skipped)
	}
}

// newResult creates a result for a run starting at start.
func newResult(runID string, mode Mode, dryRun bool, start time.Time) *Result {
	return &Result{
		Metadata: ResultMetadata{
			RunID:     runID,
			Mode:      mode,
			Phase:     PhaseStart,
			DryRun:    dryRun,
			StartTime: start,
		},
	}
}

// finalize calculates duration and marks completion.
func (r *Result) finalize(end time.Time, err error) {
	r.Err = err
	if err != nil {
		r.Metadata.FailedIn = r.Metadata.Phase
		r.Metadata.Phase = PhaseFailed
	} else {
		r.Metadata.Phase = PhaseDone
	}
	r.Metadata.EndTime = end
	r.Metadata.Duration = end.Sub(r.Metadata.StartTime)

	r.Metadata.Stats.Planned = len(r.Planned)
	r.Metadata.Stats.Created = len(r.Created)
	r.Metadata.Stats.Skipped = len(r.Skipped)
	r.Metadata.Stats.Targets = len(r.Targets)
	r.Metadata.Stats.Deleted = len(r.Deleted)
}
