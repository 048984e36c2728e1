package git

import (
	"log"
	"strings"
)

// Probe answers the two repository-state questions the action resolver
// needs. Both probes treat an indeterminate inspection as a negative
// answer: absence of certainty is absence of work to write, never a
// reason to abort the run.
type Probe struct {
	runner  Runner
	workdir string
}

// NewProbe creates a probe bound to a working directory.
func NewProbe(runner Runner, workdir string) *Probe {
	return &Probe{runner: runner, workdir: workdir}
}

// HasWorkingTreeChanges reports whether the working tree or index holds
// any staged, unstaged, or untracked modification.
func (p *Probe) HasWorkingTreeChanges() bool {
	output, err := p.runner.RunInDir(p.workdir, "git", "status", "--porcelain")
	if err != nil {
		log.Printf("[Probe] git status failed, assuming clean tree: %v", err)
		return false
	}
	return strings.TrimSpace(string(output)) != ""
}

// HasUnpushedCommits reports whether local commits exist that the remote
// does not have. New branches are compared against origin/<baseBranch>
// ancestry; existing branches against their configured upstream. A
// missing upstream or a failed comparison both read as "nothing to push".
func (p *Probe) HasUnpushedCommits(isNewBranch bool, baseBranch string) bool {
	var rangeSpec string
	if isNewBranch {
		rangeSpec = "origin/" + baseBranch + "..HEAD"
	} else {
		upstream, err := p.runner.RunInDir(p.workdir, "git", "rev-parse", "--abbrev-ref", "@{u}")
		if err != nil {
			// Non-zero exit here means no upstream is configured.
			return false
		}
		rangeSpec = strings.TrimSpace(string(upstream)) + "..HEAD"
	}

	output, err := p.runner.RunInDir(p.workdir, "git", "log", rangeSpec, "--oneline")
	if err != nil {
		log.Printf("[Probe] git log %s failed, assuming no unpushed commits: %v", rangeSpec, err)
		return false
	}
	return strings.TrimSpace(string(output)) != ""
}
