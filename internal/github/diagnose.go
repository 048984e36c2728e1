package github

import (
	"context"
	"log"
	"strings"
)

const logTailBytes = 4096

// FailureHint inspects the check runs attached to a ref and returns the
// tail of the first failed job's log, trimmed to its last few lines. It
// is best-effort: any lookup failure degrades to an empty hint, never an
// error, because the hint only enriches the failure comment.
func FailureHint(ctx context.Context, client Client, ref string) string {
	runs, err := client.ListCheckRunsForRef(ctx, ref)
	if err != nil {
		log.Printf("[Diagnose] Failed to list check runs for %s: %v", ref, err)
		return ""
	}

	for _, run := range runs {
		if run.Conclusion != "failure" {
			continue
		}

		tail, err := client.GetJobLogTail(ctx, run.ID, logTailBytes)
		if err != nil {
			log.Printf("[Diagnose] Failed to fetch log for job %d (%s): %v", run.ID, run.Name, err)
			continue
		}

		if hint := lastLines(tail, 10); hint != "" {
			return hint
		}
	}

	return ""
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
