package comment

import "github.com/cexll/postrun/internal/action"

// SuccessFeedback describes a run whose task completed.
type SuccessFeedback struct {
	Kind          action.Kind
	PRLink        string
	CommitSHA     string
	Title         string
	Summary       string
	WorkingBranch string
	BaseBranch    string
}

// FailureFeedback describes a run whose task failed.
type FailureFeedback struct {
	ErrorMessage string
}

// Payload is a tagged union: exactly one of Success or Failure is set,
// selected by the job-failed flag captured at the boundary between task
// execution and feedback posting.
type Payload struct {
	Success *SuccessFeedback
	Failure *FailureFeedback
}

// NewSuccess wraps a success variant.
func NewSuccess(s SuccessFeedback) Payload {
	return Payload{Success: &s}
}

// NewFailure wraps a failure variant.
func NewFailure(message string) Payload {
	return Payload{Failure: &FailureFeedback{ErrorMessage: message}}
}

// Failed reports which variant is populated.
func (p Payload) Failed() bool { return p.Failure != nil }
