package dispatch

import (
	"log/slog"
	"net/http"

	"github.com/scribe-docs/scribe/internal/atlassian"
	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/confluence"
	"github.com/scribe-docs/scribe/internal/jira"
)

// BuildOptions tunes the clients FromCredentials builds.
type BuildOptions struct {
	Logger     *slog.Logger
	HTTPClient *http.Client // shared by both services; nil uses the default
	UserAgent  string
}

// FromCredentials builds the knowledge-base and issue-tracker clients from
// validated credentials and returns a Dispatcher over them. The tracker is
// left unconfigured when no Jira URL is known.
func FromCredentials(creds *config.Credentials, bo BuildOptions, opts ...Option) (*Dispatcher, error) {
	logger := bo.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rest := func(service, baseURL string) (*atlassian.Client, error) {
		return atlassian.New(atlassian.Config{
			BaseURL:     baseURL,
			Email:       creds.Email,
			APIToken:    creds.APIToken,
			Service:     service,
			HTTPClient:  bo.HTTPClient,
			Timeout:     creds.Timeout,
			MaxAttempts: creds.MaxAttempts,
			UserAgent:   bo.UserAgent,
			Logger:      logger.With("service", service),
		})
	}

	kbRest, err := rest("confluence", creds.ConfluenceURL)
	if err != nil {
		return nil, err
	}
	kb := confluence.NewClient(kbRest, creds.SpaceKey, confluence.WithLogger(logger.With("service", "confluence")))

	var tracker IssueTracker
	if creds.HasJira() {
		jiraRest, err := rest("jira", creds.JiraURL)
		if err != nil {
			return nil, err
		}
		tracker = jira.NewClient(jiraRest, logger.With("service", "jira"))
	}

	return New(kb, tracker, append([]Option{WithLogger(logger)}, opts...)...), nil
}
