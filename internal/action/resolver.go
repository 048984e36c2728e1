// Package action classifies the outcome of a run into the single git/PR
// action that reflects the repository's resulting state.
package action

import (
	"log"

	"github.com/cexll/postrun/internal/branch"
	"github.com/cexll/postrun/internal/github"
)

// Kind is the closed set of post-run actions. Exactly one is produced
// per run.
type Kind string

const (
	// CreatePR: work landed on a newly created branch.
	CreatePR Kind = "create_pr"
	// CommitChanges: an existing branch has uncommitted working-tree changes.
	CommitChanges Kind = "commit_changes"
	// Push: committed but unpushed work on an existing branch.
	Push Kind = "push"
	// WriteComment: nothing to write to git, but there is somewhere to report.
	WriteComment Kind = "write_comment"
	// Nothing: no state change and no reporting target, or silent mode.
	Nothing Kind = "nothing"
)

// Probe is the repository-state surface the resolver consumes.
type Probe interface {
	HasWorkingTreeChanges() bool
	HasUnpushedCommits(isNewBranch bool, baseBranch string) bool
}

// Resolve classifies the run outcome. The rules are ordered and total:
// every combination of inputs yields exactly one kind, deterministically.
func Resolve(trigger *github.TriggerContext, info *branch.Info, probe Probe, silentMode bool) Kind {
	// Silent mode permits no git or PR side effects at all, regardless of
	// what the probe would report.
	if silentMode {
		return Nothing
	}

	changed := probe.HasWorkingTreeChanges()
	unpushed := probe.HasUnpushedCommits(info.IsNewBranch, info.BaseBranch)
	log.Printf("[Action] changed=%v unpushed=%v newBranch=%v", changed, unpushed, info.IsNewBranch)

	switch {
	case (changed || unpushed) && info.IsNewBranch:
		return CreatePR
	case changed:
		// Existing branch with working-tree changes. Changes win over
		// unpushed commits when both are present.
		return CommitChanges
	case unpushed:
		return Push
	case trigger.HasEntity() || trigger.IsTrackerDispatch():
		return WriteComment
	default:
		return Nothing
	}
}
