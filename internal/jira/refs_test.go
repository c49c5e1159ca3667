package jira

import (
	"testing"
)

func TestIsBrowseURL(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		jiraURL string
		want    bool
	}{
		{
			name:    "valid Jira Cloud URL",
			ref:     "https://company.atlassian.net/browse/PROJ-123",
			jiraURL: "https://company.atlassian.net",
			want:    true,
		},
		{
			name:    "valid Jira Cloud URL with trailing slash in config",
			ref:     "https://company.atlassian.net/browse/PROJ-123",
			jiraURL: "https://company.atlassian.net/",
			want:    true,
		},
		{
			name:    "valid Jira Server URL",
			ref:     "https://jira.company.com/browse/PROJ-456",
			jiraURL: "https://jira.company.com",
			want:    true,
		},
		{
			name:    "mismatched Jira host",
			ref:     "https://other.atlassian.net/browse/PROJ-123",
			jiraURL: "https://company.atlassian.net",
			want:    false,
		},
		{
			name:    "GitHub issue URL",
			ref:     "https://github.com/org/repo/issues/123",
			jiraURL: "https://company.atlassian.net",
			want:    false,
		},
		{
			name:    "empty ref",
			ref:     "",
			jiraURL: "https://company.atlassian.net",
			want:    false,
		},
		{
			name:    "no jiraURL configured - valid pattern",
			ref:     "https://any.atlassian.net/browse/PROJ-123",
			jiraURL: "",
			want:    true,
		},
		{
			name:    "browse in path but not an issue key",
			ref:     "https://example.com/browse/docs/page",
			jiraURL: "",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsBrowseURL(tt.ref, tt.jiraURL)
			if got != tt.want {
				t.Errorf("IsBrowseURL(%q, %q) = %v, want %v",
					tt.ref, tt.jiraURL, got, tt.want)
			}
		})
	}
}

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{name: "bare key", ref: "PROJ-123", want: "PROJ-123"},
		{name: "lower case key", ref: "ops-7", want: "OPS-7"},
		{name: "surrounding space", ref: "  AUTH-1 ", want: "AUTH-1"},
		{name: "standard Jira Cloud URL", ref: "https://company.atlassian.net/browse/PROJ-123", want: "PROJ-123"},
		{name: "URL with trailing path", ref: "https://company.atlassian.net/browse/ABC-789/some/path", want: "ABC-789"},
		{name: "URL with query", ref: "https://jira.company.com/browse/ISSUE-456?focusedCommentId=1", want: "ISSUE-456"},
		{name: "no browse pattern", ref: "https://github.com/org/repo/issues/123", wantErr: true},
		{name: "empty string", ref: "", wantErr: true},
		{name: "only browse", ref: "https://example.com/browse/", wantErr: true},
		{name: "missing number", ref: "PROJ-", wantErr: true},
		{name: "zero issue number", ref: "PROJ-0", wantErr: true},
		{name: "digit first", ref: "1PROJ-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractKey(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractKey(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractKey(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		wantErr   bool
		wantYear  int
	}{
		{
			name:      "standard Jira Cloud format with milliseconds",
			timestamp: "2024-01-15T10:30:00.000+0000",
			wantErr:   false,
			wantYear:  2024,
		},
		{
			name:      "Jira format with Z suffix",
			timestamp: "2024-01-15T10:30:00.000Z",
			wantErr:   false,
			wantYear:  2024,
		},
		{
			name:      "without milliseconds",
			timestamp: "2024-01-15T10:30:00+0000",
			wantErr:   false,
			wantYear:  2024,
		},
		{
			name:      "RFC3339 format",
			timestamp: "2024-01-15T10:30:00Z",
			wantErr:   false,
			wantYear:  2024,
		},
		{
			name:      "empty string",
			timestamp: "",
			wantErr:   true,
		},
		{
			name:      "invalid format",
			timestamp: "not-a-timestamp",
			wantErr:   true,
		},
		{
			name:      "with negative timezone offset",
			timestamp: "2024-06-15T10:30:00.000-0500",
			wantErr:   false,
			wantYear:  2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.timestamp)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.timestamp, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got.Year() != tt.wantYear {
				t.Errorf("ParseTimestamp(%q) year = %d, want %d", tt.timestamp, got.Year(), tt.wantYear)
			}
		})
	}
}
