package comment

import (
	"regexp"
	"strings"
)

var (
	reInvisible  = regexp.MustCompile("[\u200b\u200c\u200d\ufeff]")
	reControl    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\u009f]")
	reSoftHyphen = regexp.MustCompile("\u00ad")
	reBidi       = regexp.MustCompile("[\u202a-\u202e\u2066-\u2069]")

	reHTMLComments = regexp.MustCompile(`<!--[\s\S]*?-->`)

	reGitHubPATClassic   = regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`)
	reGitHubOAuth        = regexp.MustCompile(`\bgho_[A-Za-z0-9]{36}\b`)
	reGitHubInstallation = regexp.MustCompile(`\bghs_[A-Za-z0-9]{36}\b`)
	reGitHubRefresh      = regexp.MustCompile(`\bghr_[A-Za-z0-9]{36}\b`)
	reGitHubFineGrained  = regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{11,221}\b`)
)

// StripHtmlComments removes HTML comments, including stray markers from
// prior runs.
func StripHtmlComments(s string) string {
	return reHTMLComments.ReplaceAllString(s, "")
}

// StripInvisibleCharacters removes zero-width, control and bidi chars.
func StripInvisibleCharacters(s string) string {
	s = reInvisible.ReplaceAllString(s, "")
	s = reControl.ReplaceAllString(s, "")
	s = reSoftHyphen.ReplaceAllString(s, "")
	s = reBidi.ReplaceAllString(s, "")
	return s
}

// RedactGitHubTokens censors GitHub token-like strings.
func RedactGitHubTokens(s string) string {
	s = reGitHubPATClassic.ReplaceAllString(s, "[REDACTED_GITHUB_TOKEN]")
	s = reGitHubOAuth.ReplaceAllString(s, "[REDACTED_GITHUB_TOKEN]")
	s = reGitHubInstallation.ReplaceAllString(s, "[REDACTED_GITHUB_TOKEN]")
	s = reGitHubRefresh.ReplaceAllString(s, "[REDACTED_GITHUB_TOKEN]")
	s = reGitHubFineGrained.ReplaceAllString(s, "[REDACTED_GITHUB_TOKEN]")
	return s
}

// SanitizeContent cleans agent-supplied text before it is written into a
// comment. The workflow marker is embedded after this runs.
func SanitizeContent(s string) string {
	if s == "" {
		return s
	}
	s = StripHtmlComments(s)
	s = StripInvisibleCharacters(s)
	s = RedactGitHubTokens(s)
	return strings.TrimSpace(s)
}
