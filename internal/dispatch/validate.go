package dispatch

import (
	"regexp"
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/jira"
	"github.com/scribe-docs/scribe/internal/markup"
)

var (
	pageIDPattern   = regexp.MustCompile(`^[0-9]+$`)
	spaceKeyPattern = regexp.MustCompile(`^~?[A-Za-z0-9]+$`)
)

func required(op, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierr.New(apierr.KindInvalidInput, op, "%s is required", name)
	}
	return nil
}

func validatePageID(op, name, id string) error {
	if err := required(op, name, id); err != nil {
		return err
	}
	if !pageIDPattern.MatchString(id) {
		return apierr.New(apierr.KindInvalidInput, op, "%s must be numeric, got %q", name, id)
	}
	return nil
}

func validateSpaceKey(op, key string) error {
	if strings.TrimSpace(key) == "" {
		return apierr.New(apierr.KindInvalidInput, op, "space is required (no default space_key configured)")
	}
	if !spaceKeyPattern.MatchString(key) {
		return apierr.New(apierr.KindInvalidInput, op, "space key %q must be letters and digits only", key)
	}
	return nil
}

// validateIssueKey accepts PROJ-123 or a browse URL and returns the key.
func validateIssueKey(op, ref string) (string, error) {
	if err := required(op, "issue_key", ref); err != nil {
		return "", err
	}
	key, err := jira.ExtractKey(ref)
	if err != nil {
		return "", apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	return key, nil
}

// validateContent rejects empty or malformed storage markup before it is
// sent anywhere.
func validateContent(op, content string) error {
	if err := required(op, "content", content); err != nil {
		return err
	}
	if err := markup.Validate(markup.Content(content)); err != nil {
		return apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	return nil
}
