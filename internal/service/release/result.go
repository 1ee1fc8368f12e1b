package release

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/oshokin/pbo-forge/internal/domain/addon"
)

// Stage names the step of a unit of work where an outcome was decided.
type Stage string

const (
	// StageDiscover covers archive enumeration.
	StageDiscover Stage = "discover"
	// StageCopy covers copying the archive into the release tree.
	StageCopy Stage = "copy"
	// StageSign covers invoking the signer on the copied archive.
	StageSign Stage = "sign"
)

// Status is the outcome of one addon unit of work.
type Status uint8

const (
	// StatusSigned marks an archive copied and signed successfully.
	StatusSigned Status = iota
	// StatusSkippedNotAFile marks a directory entry that is not a regular
	// file; skipped, not an error.
	StatusSkippedNotAFile
	// StatusFailed marks a copy or signing error.
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSigned:
		return "signed"
	case StatusSkippedNotAFile:
		return "skipped"
	default:
		return "failed"
	}
}

// unitResult is emitted by a worker for exactly one dispatched unit.
type unitResult struct {
	// name is the addon name derived from the archive filename.
	name string
	// location is the category the archive was discovered in.
	location addon.Location
	// status is the unit outcome.
	status Status
	// stage records where a failure happened; empty unless failed.
	stage Stage
	// err is the failure cause; nil unless failed.
	err error
}

// Failure describes one failed unit with enough context to report per-addon.
type Failure struct {
	// Name is the addon name derived from the archive filename.
	Name string
	// Location is the category the archive was discovered in.
	Location addon.Location
	// Stage is the step that failed.
	Stage Stage
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %s: %v", f.Name, f.Location, f.Stage, f.Err)
}

// Unwrap exposes the cause to errors.Is/As.
func (f Failure) Unwrap() error {
	return f.Err
}

// Report is the complete, consistent snapshot of all dispatched units,
// read only after the worker pool has fully drained.
type Report struct {
	// SignedCount is incremented exactly once per signed archive.
	SignedCount uint
	// SkippedCount counts directory entries ignored for not being regular files.
	SkippedCount uint
	// Failures collects failed units; one failure never aborts the rest.
	Failures []Failure
}

// Err folds all collected failures into a single error, or nil when the
// release was clean. The CLI layer decides what exit code that maps to.
func (r *Report) Err() error {
	var combined error
	for _, f := range r.Failures {
		combined = multierr.Append(combined, f)
	}

	return combined
}
