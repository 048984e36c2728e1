// Command postrun brackets an autonomous coding task inside a CI run.
// The prepare phase establishes the working branch and the tracked
// status comment before the task executes; the complete phase inspects
// the repository afterwards, classifies the outcome, and reconciles the
// feedback comment.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cexll/postrun/internal/config"
	"github.com/cexll/postrun/internal/github"
	"github.com/cexll/postrun/internal/runio"
	"github.com/joho/godotenv"
)

var loadDotEnv = godotenv.Load

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: postrun <prepare|complete>")
	}

	if err := run(context.Background(), os.Args[1]); err != nil {
		log.Fatalf("postrun %s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, phase string) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	trigger, err := github.ParseTriggerContext()
	if err != nil {
		return fmt.Errorf("failed to parse trigger context: %w", err)
	}

	log.Printf("Event: %s, repository: %s, entity: #%d, actor: %s",
		trigger.Event, trigger.Repository.FullName(), trigger.EntityNumber, trigger.Actor)
	if cfg.SilentMode {
		log.Printf("Silent mode enabled: no repository or comment side effects")
	}

	token, err := resolveToken(cfg, trigger)
	if err != nil {
		return err
	}

	retry := github.RetryPolicy{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitialDelay,
		MaxDelay:     cfg.RetryMaxDelay,
	}
	client := github.NewRESTClient(token, trigger.Repository, retry)
	store := runio.NewStore()

	switch phase {
	case "prepare":
		return runPrepare(ctx, cfg, trigger, client, store, token)
	case "complete":
		return runComplete(ctx, cfg, trigger, client, store)
	default:
		return fmt.Errorf("unknown phase: %s (expected prepare or complete)", phase)
	}
}

// resolveToken prefers App credentials when configured; the minted
// installation token also determines the identity the run acts as.
func resolveToken(cfg *config.Config, trigger *github.TriggerContext) (string, error) {
	if cfg.UsesAppAuth() {
		appAuth := &github.AppAuth{
			AppID:      cfg.GitHubAppID,
			PrivateKey: cfg.GitHubPrivateKey,
		}
		installation, err := appAuth.GetInstallationToken(trigger.Repository)
		if err != nil {
			return "", fmt.Errorf("failed to get installation token: %w", err)
		}
		return installation.Token, nil
	}
	return cfg.GitHubToken, nil
}

func workdir() string {
	if ws := os.Getenv("GITHUB_WORKSPACE"); ws != "" {
		return ws
	}
	return "."
}
