package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Key describes one configuration key.
type Key struct {
	Name        string // key in config files (e.g., "confluence_url")
	Description string // human-readable description
	EnvVar      string // environment variable that overrides the key
	Secret      bool   // redacted in output
	Required    bool   // Load fails without it
	Default     string // default value (empty = no default)
	Validate    func(string) error
}

// Keys defines every recognised configuration key.
var Keys = []Key{
	{
		Name:        "confluence_url",
		Description: "Knowledge-base base URL (e.g., https://acme.atlassian.net/wiki)",
		EnvVar:      "SCRIBE_CONFLUENCE_URL",
		Required:    true,
		Validate:    validateURL,
	},
	{
		Name:        "email",
		Description: "Account email used with the API token",
		EnvVar:      "SCRIBE_EMAIL",
		Required:    true,
	},
	{
		Name:        "api_token",
		Description: "API token for the knowledge base and the tracker",
		EnvVar:      "SCRIBE_API_TOKEN",
		Secret:      true,
		Required:    true,
	},
	{
		Name:        "space_key",
		Description: "Default space for new pages",
		EnvVar:      "SCRIBE_SPACE_KEY",
		Required:    true,
		Validate:    validateSpaceKey,
	},
	{
		Name:        "jira_url",
		Description: "Issue tracker base URL (derived from an atlassian.net knowledge base when unset)",
		EnvVar:      "SCRIBE_JIRA_URL",
		Validate:    validateURL,
	},
	{
		Name:        "jira_project_key",
		Description: "Default tracker project",
		EnvVar:      "SCRIBE_JIRA_PROJECT_KEY",
	},
	{
		Name:        "timeout",
		Description: "Per-request timeout",
		EnvVar:      "SCRIBE_TIMEOUT",
		Default:     "30s",
		Validate:    validateDuration,
	},
	{
		Name:        "max_attempts",
		Description: "Attempts per request, retries included",
		EnvVar:      "SCRIBE_MAX_ATTEMPTS",
		Default:     "3",
		Validate:    validateAttempts,
	},
}

// keyMap is a lookup table built from Keys.
var keyMap map[string]*Key

func init() {
	keyMap = make(map[string]*Key, len(Keys))
	for i := range Keys {
		keyMap[Keys[i].Name] = &Keys[i]
	}
}

// LookupKey returns the Key definition, or nil when name is not a known key.
func LookupKey(name string) *Key {
	return keyMap[name]
}

// ValidateKey checks whether name is known and value is valid for it.
func ValidateKey(name, value string) error {
	k := keyMap[name]
	if k == nil {
		known := make([]string, 0, len(Keys))
		for _, k := range Keys {
			known = append(known, k.Name)
		}
		return fmt.Errorf("unknown config key %q; valid keys: %s", name, strings.Join(known, ", "))
	}
	if value == "" {
		return nil
	}
	if k.Validate != nil {
		if err := k.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}
	return nil
}

// KeyEnvMap returns a mapping from key name to environment variable name.
func KeyEnvMap() map[string]string {
	m := make(map[string]string, len(Keys))
	for _, k := range Keys {
		if k.EnvVar != "" {
			m[k.Name] = k.EnvVar
		}
	}
	return m
}

// Validation helpers

func validateURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("must be an http(s) URL, got %q", value)
	}
	return nil
}

var spaceKeyPattern = regexp.MustCompile(`^~?[A-Za-z0-9]+$`)

func validateSpaceKey(value string) error {
	if !spaceKeyPattern.MatchString(value) {
		return fmt.Errorf("must be letters and digits only, got %q", value)
	}
	return nil
}

func validateDuration(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("must be a duration such as 30s, got %q", value)
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

func validateAttempts(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if n < 1 || n > 10 {
		return fmt.Errorf("must be between 1 and 10, got %d", n)
	}
	return nil
}
