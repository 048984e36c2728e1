package git

import (
	"errors"
	"strings"
	"testing"
)

func TestHasWorkingTreeChanges(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   bool
	}{
		{"clean tree", "", nil, false},
		{"whitespace only", "  \n", nil, false},
		{"modified file", " M internal/git/ops.go\n", nil, true},
		{"untracked file", "?? newfile.go\n", nil, true},
		{"status fails", "fatal: not a git repository", errors.New("exit status 128"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewMockRunner()
			runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
				return []byte(tt.output), tt.err
			}

			probe := NewProbe(runner, "/work")
			if got := probe.HasWorkingTreeChanges(); got != tt.want {
				t.Errorf("HasWorkingTreeChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUnpushedCommitsNewBranch(t *testing.T) {
	runner := NewMockRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		if args[0] != "log" {
			t.Errorf("unexpected git subcommand %q", args[0])
		}
		if args[1] != "origin/main..HEAD" {
			t.Errorf("range = %q, want %q", args[1], "origin/main..HEAD")
		}
		return []byte("abc1234 fix the thing\n"), nil
	}

	probe := NewProbe(runner, "/work")
	if !probe.HasUnpushedCommits(true, "main") {
		t.Error("HasUnpushedCommits() = false, want true")
	}
}

func TestHasUnpushedCommitsExistingBranchWithUpstream(t *testing.T) {
	runner := NewMockRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		switch args[0] {
		case "rev-parse":
			return []byte("origin/feature\n"), nil
		case "log":
			if args[1] != "origin/feature..HEAD" {
				t.Errorf("range = %q, want %q", args[1], "origin/feature..HEAD")
			}
			return []byte("def5678 more work\n"), nil
		}
		t.Fatalf("unexpected git subcommand %q", args[0])
		return nil, nil
	}

	probe := NewProbe(runner, "/work")
	if !probe.HasUnpushedCommits(false, "main") {
		t.Error("HasUnpushedCommits() = false, want true")
	}
}

func TestHasUnpushedCommitsNoUpstream(t *testing.T) {
	runner := NewMockRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		if args[0] == "rev-parse" {
			return []byte("fatal: no upstream configured"), errors.New("exit status 128")
		}
		t.Fatalf("should not run %q after upstream lookup fails", strings.Join(args, " "))
		return nil, nil
	}

	probe := NewProbe(runner, "/work")
	if probe.HasUnpushedCommits(false, "main") {
		t.Error("HasUnpushedCommits() = true, want false when no upstream")
	}
}

func TestHasUnpushedCommitsLogFailure(t *testing.T) {
	runner := NewMockRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		if args[0] == "log" {
			return []byte("fatal: bad revision"), errors.New("exit status 128")
		}
		return []byte("origin/main\n"), nil
	}

	probe := NewProbe(runner, "/work")
	if probe.HasUnpushedCommits(true, "main") {
		t.Error("HasUnpushedCommits() = true, want false when comparison fails")
	}
}

func TestHasUnpushedCommitsNothingAhead(t *testing.T) {
	runner := NewMockRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, error) {
		return []byte(""), nil
	}

	probe := NewProbe(runner, "/work")
	if probe.HasUnpushedCommits(true, "main") {
		t.Error("HasUnpushedCommits() = true, want false for empty log")
	}
}
