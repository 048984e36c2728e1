package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a postrun invocation.
// It is populated once at process start and never mutated afterwards.
type Config struct {
	// GitHub credentials. Either a plain token or App credentials
	// (App ID + private key) must be provided.
	GitHubToken      string
	GitHubAppID      string
	GitHubPrivateKey string

	// Bot identity used for git commits and the self-PR reuse check.
	BotName string

	// Behavior flags
	SilentMode       bool // suppress all repo/comment side effects
	AlwaysNewBranch  bool // never reuse an existing PR branch
	SingleComment    bool // collapse repeated runs into one tracked comment
	ResolveConflicts bool // unbounded fetch depth for conflict work
	AutoCreatePR     bool // create the PR in the complete phase

	// Base branch override; empty means the repository default branch.
	BaseBranch string

	// Retry policy for hosting-API calls.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	// External tracker settings. Tracker posting is enabled only when
	// TrackerBaseURL is set.
	TrackerBaseURL      string
	TrackerUser         string
	TrackerToken        string
	TrackerReviewStatus string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubAppID:         os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey:    normalizePrivateKey(os.Getenv("GITHUB_PRIVATE_KEY")),
		BotName:             getEnv("POSTRUN_BOT_NAME", "postrun"),
		SilentMode:          getEnvBool("POSTRUN_SILENT", false),
		AlwaysNewBranch:     getEnvBool("POSTRUN_ALWAYS_NEW_BRANCH", false),
		SingleComment:       getEnvBool("POSTRUN_SINGLE_COMMENT", true),
		ResolveConflicts:    getEnvBool("POSTRUN_RESOLVE_CONFLICTS", false),
		AutoCreatePR:        getEnvBool("POSTRUN_CREATE_PR", false),
		BaseBranch:          os.Getenv("POSTRUN_BASE_BRANCH"),
		RetryMaxAttempts:    getEnvInt("POSTRUN_RETRY_ATTEMPTS", 3),
		RetryInitialDelay:   time.Duration(getEnvInt("POSTRUN_RETRY_INITIAL_MS", 1000)) * time.Millisecond,
		RetryMaxDelay:       time.Duration(getEnvInt("POSTRUN_RETRY_MAX_MS", 5000)) * time.Millisecond,
		TrackerBaseURL:      os.Getenv("TRACKER_BASE_URL"),
		TrackerUser:         os.Getenv("TRACKER_USER"),
		TrackerToken:        os.Getenv("TRACKER_TOKEN"),
		TrackerReviewStatus: getEnv("TRACKER_REVIEW_STATUS", "In Review"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UsesAppAuth reports whether GitHub App credentials are configured.
func (c *Config) UsesAppAuth() bool {
	return c.GitHubAppID != "" && c.GitHubPrivateKey != ""
}

// TrackerEnabled reports whether external-tracker posting is configured.
func (c *Config) TrackerEnabled() bool {
	return c.TrackerBaseURL != ""
}

// validate checks that all required configuration is present
func (c *Config) validate() error {
	if c.GitHubToken == "" && !c.UsesAppAuth() {
		return fmt.Errorf("GITHUB_TOKEN or GITHUB_APP_ID/GITHUB_PRIVATE_KEY is required")
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("POSTRUN_RETRY_ATTEMPTS must be greater than 0")
	}
	if c.RetryInitialDelay <= 0 {
		return fmt.Errorf("POSTRUN_RETRY_INITIAL_MS must be greater than 0")
	}
	if c.RetryMaxDelay < c.RetryInitialDelay {
		return fmt.Errorf("POSTRUN_RETRY_MAX_MS must be >= POSTRUN_RETRY_INITIAL_MS")
	}
	return nil
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets environment variable as bool with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
