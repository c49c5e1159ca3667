package types

import (
	"testing"
)

func TestWorkSessionRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     WorkSessionRecord
		wantErr bool
	}{
		{"task name set", WorkSessionRecord{TaskName: "Fix login timeout"}, false},
		{"missing task name", WorkSessionRecord{Overview: "x"}, true},
		{"blank task name", WorkSessionRecord{TaskName: "  \t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkSessionRecordAuthor(t *testing.T) {
	r := &WorkSessionRecord{TaskName: "x"}
	if got := r.Author(); got != DefaultAuthor {
		t.Errorf("Author() = %q, want %q", got, DefaultAuthor)
	}
	r.DocumentedBy = " alice "
	if got := r.Author(); got != "alice" {
		t.Errorf("Author() = %q, want %q", got, "alice")
	}
}

func TestWorkSessionRecordPageTitle(t *testing.T) {
	tests := []struct {
		name  string
		task  string
		issue *IssueSummary
		want  string
	}{
		{"no issue", "Fix login timeout", nil, "Fix login timeout"},
		{"issue prefix", "Fix login timeout", &IssueSummary{Key: "PROJ-123"}, "PROJ-123: Fix login timeout"},
		{"already prefixed", "PROJ-123 login", &IssueSummary{Key: "PROJ-123"}, "PROJ-123 login"},
		{"issue without key", "Fix", &IssueSummary{Summary: "s"}, "Fix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &WorkSessionRecord{TaskName: tt.task, LinkedIssue: tt.issue}
			if got := r.PageTitle(); got != tt.want {
				t.Errorf("PageTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProjectDocs(t *testing.T) {
	d := &ProjectDocs{}
	if err := d.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing overview name")
	}
	d.Overview.Name = " Billing API "
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if got, want := d.ChildTitle(TitleSetup), "Billing API - Setup & Installation"; got != want {
		t.Errorf("ChildTitle() = %q, want %q", got, want)
	}
}

func TestIdentityName(t *testing.T) {
	tests := []struct {
		id   Identity
		want string
	}{
		{Identity{AccountID: "a1", DisplayName: "Alice", Email: "a@example.com"}, "Alice"},
		{Identity{AccountID: "a1", Email: "a@example.com"}, "a@example.com"},
		{Identity{AccountID: "a1"}, "a1"},
	}
	for _, tt := range tests {
		if got := tt.id.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}
