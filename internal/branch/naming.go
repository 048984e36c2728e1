package branch

import (
	"fmt"
	"regexp"
	"strings"
)

// maxBranchNameLen keeps derived names within ref-name limits shared with
// downstream tooling.
const maxBranchNameLen = 50

var (
	reInvalidChars = regexp.MustCompile(`[^a-z0-9-/]+`)
	reDashRuns     = regexp.MustCompile(`-+`)
)

// DerivedName builds the working branch name for a new branch from the
// entity kind ("issue" or "pr"), the entity number and the run
// identifier: postrun/issue-42-77. Entity-less triggers fall back to the
// event name in place of kind and number.
func DerivedName(kind string, number int, runID string) string {
	var name string
	if number > 0 {
		name = fmt.Sprintf("postrun/%s-%d-%s", kind, number, runID)
	} else {
		name = fmt.Sprintf("postrun/%s-%s", kind, runID)
	}
	return Normalize(name)
}

// Normalize lowercases a branch name, strips characters git refs reject,
// and truncates to the length limit.
func Normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")
	name = reInvalidChars.ReplaceAllString(name, "")
	name = reDashRuns.ReplaceAllString(name, "-")

	if len(name) > maxBranchNameLen {
		name = name[:maxBranchNameLen]
	}
	return strings.Trim(name, "-")
}
