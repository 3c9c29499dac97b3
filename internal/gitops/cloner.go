package gitops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
)

// Credentials are the GitHub username and API key injected into clone URLs.
type Credentials struct {
	Username string
	APIKey   string
}

// runner abstracts git process execution. The default implementation shells
// out to the git binary; tests substitute a stub.
type runner interface {
	Run(ctx context.Context, args ...string) (stdout, stderr string, err error)
}

type gitRunner struct{}

func (gitRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Cloner clones repositories with credentials injected into the remote URL.
type Cloner struct {
	creds  Credentials
	run    runner
	logger *slog.Logger
}

type Option func(*Cloner)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cloner) {
		c.logger = logger
	}
}

// withRunner is test-only plumbing for substituting the git process runner.
func withRunner(r runner) Option {
	return func(c *Cloner) {
		c.run = r
	}
}

// NewCloner creates a Cloner. Both credential fields must be present; callers
// gate on that before offering the clone operation at all.
func NewCloner(creds Credentials, opts ...Option) (*Cloner, error) {
	if strings.TrimSpace(creds.Username) == "" || strings.TrimSpace(creds.APIKey) == "" {
		return nil, errors.New("gitops: github credentials must be configured")
	}
	c := &Cloner{
		creds:  creds,
		run:    gitRunner{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateURL checks that raw is a well-formed absolute http(s) URL. Invalid
// input fails before any network action.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("gitops: invalid repository url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("gitops: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("gitops: repository url %q has no host", raw)
	}
	return nil
}

// AuthenticatedURL splits repoURL at the first scheme separator and rejoins
// with "username:apikey@" inserted immediately after it, so
// "scheme//host/path" becomes "scheme//u:k@host/path".
func AuthenticatedURL(repoURL, username, apiKey string) string {
	parts := strings.SplitN(repoURL, "//", 2)
	if len(parts) != 2 {
		return repoURL
	}
	return parts[0] + "//" + username + ":" + apiKey + "@" + parts[1]
}

// Clone validates repoURL, injects the credentials, and writes a working copy
// of the repository at clonePath. On success it returns a confirmation string
// naming source and destination. Failures are returned as typed errors with
// the API key redacted; rendering them as soft text is the command layer's
// concern.
func (c *Cloner) Clone(ctx context.Context, repoURL, clonePath string) (string, error) {
	if err := ValidateURL(repoURL); err != nil {
		return "", err
	}
	if strings.TrimSpace(clonePath) == "" {
		return "", errors.New("gitops: clone path must not be empty")
	}

	authURL := AuthenticatedURL(repoURL, c.creds.Username, c.creds.APIKey)

	c.logger.Info("cloning repository", "url", repoURL, "path", clonePath)
	_, stderr, err := c.run.Run(ctx, "clone", authURL, clonePath)
	if err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("gitops: clone %s: %s", repoURL, c.redact(detail))
	}

	return fmt.Sprintf("Cloned %s to %s", repoURL, clonePath), nil
}

// redact strips the API key from git output before it reaches logs or
// error text.
func (c *Cloner) redact(s string) string {
	return strings.ReplaceAll(s, c.creds.APIKey, "***")
}
