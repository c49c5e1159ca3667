package jira

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// keyPattern matches an issue key such as PROJ-123.
var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[1-9][0-9]*$`)

// IsValidKey reports whether key looks like an issue key.
func IsValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// IsBrowseURL checks if ref is an issue URL on the configured Jira instance.
// It validates both the URL structure (/browse/PROJECT-123) and optionally the host.
func IsBrowseURL(ref, jiraURL string) bool {
	if !strings.Contains(ref, "/browse/") {
		return false
	}
	if jiraURL != "" {
		jiraURL = strings.TrimSuffix(jiraURL, "/")
		if !strings.HasPrefix(ref, jiraURL) {
			return false
		}
	}
	return IsValidKey(browseKey(ref))
}

// browseKey returns the path segment after /browse/, without query or fragment.
func browseKey(ref string) string {
	idx := strings.LastIndex(ref, "/browse/")
	if idx == -1 {
		return ""
	}
	key := ref[idx+len("/browse/"):]
	if i := strings.IndexAny(key, "/?#"); i >= 0 {
		key = key[:i]
	}
	return key
}

// ExtractKey accepts an issue key or a browse URL and returns the key.
// For example, "https://company.atlassian.net/browse/PROJ-123" returns "PROJ-123".
func ExtractKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("issue key is required")
	}
	key := ref
	if strings.Contains(ref, "/browse/") {
		key = browseKey(ref)
	}
	key = strings.ToUpper(key)
	if !IsValidKey(key) {
		return "", fmt.Errorf("%q is not an issue key (expected PROJ-123 or a /browse/PROJ-123 URL)", ref)
	}
	return key, nil
}

// ParseTimestamp parses Jira's timestamp format into a time.Time.
// Jira uses ISO 8601 with timezone: 2024-01-15T10:30:00.000+0000 or 2024-01-15T10:30:00.000Z
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	formats := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", ts)
}
