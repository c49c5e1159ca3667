// Package config loads the credentials and settings scribe runs with.
//
// Values come, in increasing precedence, from key defaults, a config file
// (yaml, json or toml), a .env file and SCRIBE_* environment variables.
// The result is an immutable Credentials value that is validated before any
// client is built from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/scribe-docs/scribe/internal/apierr"
)

// Credentials is the validated configuration.
type Credentials struct {
	ConfluenceURL  string        `json:"confluence_url"`
	Email          string        `json:"email"`
	APIToken       string        `json:"api_token"`
	SpaceKey       string        `json:"space_key"`
	JiraURL        string        `json:"jira_url,omitempty"`
	JiraProjectKey string        `json:"jira_project_key,omitempty"`
	Timeout        time.Duration `json:"timeout"`
	MaxAttempts    int           `json:"max_attempts"`

	// Source is the config file that was read, if any.
	Source string `json:"-"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist.
	ConfigFile string
	// Dir is the project directory searched for .scribe/config.* and .env.
	// Defaults to the working directory.
	Dir string
	// Home is the user directory searched for .config/scribe/config.*.
	// Defaults to os.UserHomeDir.
	Home string
	// SkipDotEnv disables .env loading.
	SkipDotEnv bool
}

// Load reads, normalises and validates the configuration.
func Load(opts LoadOptions) (*Credentials, error) {
	const op = "load config"

	dir := opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	home := opts.Home
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	if !opts.SkipDotEnv {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, apierr.Wrap(apierr.KindConfigInvalid, op, fmt.Errorf("read .env: %w", err))
		}
	}

	v := viper.New()
	for _, k := range Keys {
		if k.Default != "" {
			v.SetDefault(k.Name, k.Default)
		}
		if k.EnvVar != "" {
			_ = v.BindEnv(k.Name, k.EnvVar)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apierr.Wrap(apierr.KindConfigInvalid, op, fmt.Errorf("read %s: %w", opts.ConfigFile, err))
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(dir, ".scribe"))
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".config", "scribe"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, apierr.Wrap(apierr.KindConfigInvalid, op, err)
			}
		}
	}

	values := make(map[string]string, len(Keys))
	for _, k := range Keys {
		values[k.Name] = strings.TrimSpace(v.GetString(k.Name))
	}
	creds, err := fromValues(values)
	if err != nil {
		return nil, err
	}
	creds.Source = v.ConfigFileUsed()
	return creds, nil
}

// fromValues validates raw key values and builds Credentials.
func fromValues(values map[string]string) (*Credentials, error) {
	const op = "load config"

	var missing, invalid []string
	for _, k := range Keys {
		val := values[k.Name]
		if val == "" {
			if k.Required {
				missing = append(missing, fmt.Sprintf("%s (%s)", k.Name, k.EnvVar))
			}
			continue
		}
		if err := ValidateKey(k.Name, val); err != nil {
			invalid = append(invalid, err.Error())
		}
	}
	if len(missing) > 0 {
		return nil, apierr.New(apierr.KindConfigInvalid, op, "missing required settings: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return nil, apierr.New(apierr.KindConfigInvalid, op, "%s", strings.Join(invalid, "; "))
	}

	timeout, _ := time.ParseDuration(orDefault(values["timeout"], "30s"))
	attempts, _ := strconv.Atoi(orDefault(values["max_attempts"], "3"))

	c := &Credentials{
		ConfluenceURL:  NormalizeConfluenceURL(values["confluence_url"]),
		Email:          values["email"],
		APIToken:       values["api_token"],
		SpaceKey:       values["space_key"],
		JiraURL:        strings.TrimRight(values["jira_url"], "/"),
		JiraProjectKey: values["jira_project_key"],
		Timeout:        timeout,
		MaxAttempts:    attempts,
	}
	if c.JiraURL == "" {
		c.JiraURL = DeriveJiraURL(c.ConfluenceURL)
	}
	return c, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// NormalizeConfluenceURL strips trailing slashes and appends /wiki to an
// atlassian.net site URL that lacks it.
func NormalizeConfluenceURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if strings.Contains(u, "atlassian.net") && !strings.Contains(u, "/wiki") {
		u += "/wiki"
	}
	return u
}

// DeriveJiraURL returns the tracker URL of an atlassian.net site, which is
// the knowledge-base URL without /wiki. Other hosts yield "".
func DeriveJiraURL(confluenceURL string) string {
	if !strings.Contains(confluenceURL, "atlassian.net") {
		return ""
	}
	return strings.TrimSuffix(confluenceURL, "/wiki")
}

// HasJira reports whether tracker operations are configured.
func (c *Credentials) HasJira() bool { return c.JiraURL != "" }

// RequireJira fails ConfigInvalid when no tracker URL is configured.
func (c *Credentials) RequireJira(op string) error {
	if c.HasJira() {
		return nil
	}
	return &apierr.Error{
		Kind:    apierr.KindConfigInvalid,
		Op:      op,
		Message: "jira_url is not configured (set jira_url or SCRIBE_JIRA_URL)",
	}
}

// Setting is one displayable configuration value.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Redacted lists the settings with secrets masked, sorted by key.
func (c *Credentials) Redacted() []Setting {
	values := map[string]string{
		"confluence_url":   c.ConfluenceURL,
		"email":            c.Email,
		"api_token":        c.APIToken,
		"space_key":        c.SpaceKey,
		"jira_url":         c.JiraURL,
		"jira_project_key": c.JiraProjectKey,
		"timeout":          c.Timeout.String(),
		"max_attempts":     strconv.Itoa(c.MaxAttempts),
	}
	out := make([]Setting, 0, len(values))
	for k, val := range values {
		if key := LookupKey(k); key != nil && key.Secret && val != "" {
			val = mask(val)
		}
		out = append(out, Setting{Key: k, Value: val})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
