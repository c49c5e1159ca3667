package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribe-docs/scribe/internal/apierr"
)

// clearEnv unsets every SCRIBE_* key so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range Keys {
		t.Setenv(k.EnvVar, "")
		os.Unsetenv(k.EnvVar)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCRIBE_CONFLUENCE_URL", "https://acme.atlassian.net/")
	t.Setenv("SCRIBE_EMAIL", "dev@acme.io")
	t.Setenv("SCRIBE_API_TOKEN", "secret-token")
	t.Setenv("SCRIBE_SPACE_KEY", "ENG")

	creds, err := Load(LoadOptions{Dir: t.TempDir(), Home: t.TempDir(), SkipDotEnv: true})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.atlassian.net/wiki", creds.ConfluenceURL)
	assert.Equal(t, "https://acme.atlassian.net", creds.JiraURL)
	assert.Equal(t, "dev@acme.io", creds.Email)
	assert.Equal(t, "ENG", creds.SpaceKey)
	assert.Equal(t, 30*time.Second, creds.Timeout)
	assert.Equal(t, 3, creds.MaxAttempts)
	assert.True(t, creds.HasJira())
	assert.Empty(t, creds.Source)
}

func TestLoadMissingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCRIBE_CONFLUENCE_URL", "https://kb.example.com")

	_, err := Load(LoadOptions{Dir: t.TempDir(), Home: t.TempDir(), SkipDotEnv: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ConfigInvalid)
	for _, name := range []string{"email", "api_token", "space_key"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.NotContains(t, err.Error(), "confluence_url")
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCRIBE_CONFLUENCE_URL", "kb.example.com")
	t.Setenv("SCRIBE_EMAIL", "dev@example.com")
	t.Setenv("SCRIBE_API_TOKEN", "tok")
	t.Setenv("SCRIBE_SPACE_KEY", "ENG")
	t.Setenv("SCRIBE_MAX_ATTEMPTS", "0")

	_, err := Load(LoadOptions{Dir: t.TempDir(), Home: t.TempDir(), SkipDotEnv: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ConfigInvalid)
	assert.Contains(t, err.Error(), "confluence_url")
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestLoadProjectConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".scribe", "config.yaml"), `
confluence_url: https://kb.example.com/
email: dev@example.com
api_token: from-file
space_key: DOCS
jira_url: https://jira.example.com/
timeout: 5s
max_attempts: 4
`)

	creds, err := Load(LoadOptions{Dir: dir, Home: t.TempDir(), SkipDotEnv: true})
	require.NoError(t, err)

	assert.Equal(t, "https://kb.example.com", creds.ConfluenceURL)
	assert.Equal(t, "https://jira.example.com", creds.JiraURL)
	assert.Equal(t, 5*time.Second, creds.Timeout)
	assert.Equal(t, 4, creds.MaxAttempts)
	assert.Equal(t, filepath.Join(dir, ".scribe", "config.yaml"), creds.Source)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "scribe.toml")
	writeFile(t, cfg, `
confluence_url = "https://kb.example.com"
email = "dev@example.com"
api_token = "from-file"
space_key = "DOCS"
`)
	t.Setenv("SCRIBE_SPACE_KEY", "OPS")

	creds, err := Load(LoadOptions{ConfigFile: cfg, Dir: dir, Home: t.TempDir(), SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "OPS", creds.SpaceKey)
	assert.Equal(t, "from-file", creds.APIToken)
	assert.False(t, creds.HasJira(), "non-atlassian.net hosts do not derive a tracker URL")
}

func TestLoadExplicitConfigMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), SkipDotEnv: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ConfigInvalid)
}

func TestLoadHomeConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "scribe", "config.json"), `{
  "confluence_url": "https://kb.example.com",
  "email": "dev@example.com",
  "api_token": "tok",
  "space_key": "HOME"
}`)

	creds, err := Load(LoadOptions{Dir: t.TempDir(), Home: home, SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "HOME", creds.SpaceKey)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), strings.Join([]string{
		"SCRIBE_CONFLUENCE_URL=https://kb.example.com",
		"SCRIBE_EMAIL=dev@example.com",
		"SCRIBE_API_TOKEN=dotenv-token",
		"SCRIBE_SPACE_KEY=DOT",
	}, "\n"))
	// godotenv sets process env directly; make sure it is cleaned up.
	t.Cleanup(func() {
		for _, k := range Keys {
			os.Unsetenv(k.EnvVar)
		}
	})

	creds, err := Load(LoadOptions{Dir: dir, Home: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "DOT", creds.SpaceKey)
	assert.Equal(t, "dotenv-token", creds.APIToken)
}

func TestNormalizeConfluenceURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://acme.atlassian.net", "https://acme.atlassian.net/wiki"},
		{"https://acme.atlassian.net/wiki/", "https://acme.atlassian.net/wiki"},
		{"https://kb.example.com/", "https://kb.example.com"},
		{"  https://kb.example.com/confluence  ", "https://kb.example.com/confluence"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeConfluenceURL(tt.in))
		})
	}
}

func TestDeriveJiraURL(t *testing.T) {
	assert.Equal(t, "https://acme.atlassian.net", DeriveJiraURL("https://acme.atlassian.net/wiki"))
	assert.Empty(t, DeriveJiraURL("https://kb.example.com"))
}

func TestRequireJira(t *testing.T) {
	c := &Credentials{}
	err := c.RequireJira("get issue")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ConfigInvalid)

	c.JiraURL = "https://jira.example.com"
	assert.NoError(t, c.RequireJira("get issue"))
}

func TestRedacted(t *testing.T) {
	c := &Credentials{
		ConfluenceURL: "https://kb.example.com",
		APIToken:      "abcdefgh1234",
		Timeout:       30 * time.Second,
		MaxAttempts:   3,
	}
	settings := c.Redacted()
	require.Len(t, settings, len(Keys))

	byKey := map[string]string{}
	for i, s := range settings {
		if i > 0 {
			assert.Less(t, settings[i-1].Key, s.Key, "settings are sorted")
		}
		byKey[s.Key] = s.Value
	}
	assert.Equal(t, "****1234", byKey["api_token"])
	assert.Equal(t, "https://kb.example.com", byKey["confluence_url"])
	assert.Equal(t, "30s", byKey["timeout"])
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name, key, value string
		wantErr          bool
	}{
		{"unknown key", "nope", "x", true},
		{"empty value allowed", "jira_url", "", false},
		{"good url", "jira_url", "https://jira.example.com", false},
		{"bad scheme", "jira_url", "ftp://jira.example.com", true},
		{"good space", "space_key", "ENG", false},
		{"personal space", "space_key", "~dev", false},
		{"bad space", "space_key", "ENG-1", true},
		{"good timeout", "timeout", "1m", false},
		{"negative timeout", "timeout", "-1s", true},
		{"attempts too high", "max_attempts", "11", true},
		{"attempts not a number", "max_attempts", "three", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeyEnvMap(t *testing.T) {
	m := KeyEnvMap()
	assert.Equal(t, "SCRIBE_API_TOKEN", m["api_token"])
	assert.Len(t, m, len(Keys))
	assert.NotNil(t, LookupKey("space_key"))
	assert.Nil(t, LookupKey("bogus"))
}
