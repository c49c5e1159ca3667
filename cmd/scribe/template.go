package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/session"
	"github.com/scribe-docs/scribe/internal/types"
)

var templateCmd = &cobra.Command{
	Use:       "template session|project",
	GroupID:   "docs",
	Short:     "Print an example record to start from",
	Example:   `  scribe template session --format toml > session.toml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"session", "project"},
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("format")
		format, err := session.ParseFormat(name)
		if err != nil {
			FatalAPIError(err)
		}
		var v interface{}
		switch args[0] {
		case "session":
			v = exampleSession()
		case "project":
			v = exampleProject()
		default:
			FatalErrorWithHint("unknown template "+args[0], "Use 'session' or 'project'", dispatch.ExitUsage)
		}
		if err := session.Encode(os.Stdout, format, v); err != nil {
			FatalError("%v", err)
		}
	},
}

func init() {
	templateCmd.Flags().String("format", "yaml", "Output format: yaml, toml or json")
	rootCmd.AddCommand(templateCmd)
}

func exampleSession() *types.WorkSessionRecord {
	return &types.WorkSessionRecord{
		TaskName:    "Fix login timeout",
		Overview:    "Users were logged out after 5 minutes of inactivity.",
		ActionsDone: []string{"Traced the expiry to the session middleware", "Raised the session timeout"},
		FilesInvolved: []types.FileRef{
			{Path: "config/settings.py", Description: "SESSION_TIMEOUT raised to 1800s"},
		},
		CodeSnippets: []types.CodeSnippet{
			{Code: "SESSION_TIMEOUT = 1800", Language: "python", Title: "settings.py"},
		},
		CommandsRun:   []string{"pytest tests/test_session.py"},
		HowToRecreate: []string{"Log in", "Stay idle for 6 minutes", "Reload the dashboard"},
		Notes:         "The old value predates the SSO migration.",
		DocumentedBy:  "alice",
	}
}

func exampleProject() *types.ProjectDocs {
	return &types.ProjectDocs{
		Overview: types.ProjectOverview{
			Name:        "Billing API",
			Description: "Issues invoices and tracks payments.",
			TechStack:   []string{"Go", "PostgreSQL"},
			Metadata:    []types.KeyValue{{Key: "Owner", Value: "Payments team"}},
			QuickStart:  []string{"make dev", "make test"},
			GeneratedAt: time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
		},
		Architecture: &types.ArchitectureOverview{
			Description: "A stateless HTTP service in front of one database.",
			Components:  []string{"HTTP API", "Invoice worker"},
		},
		Dependencies: &types.DependencyReport{
			Production: []types.Dependency{{Name: "github.com/jackc/pgx/v5", Version: "v5.7.1"}},
		},
		Setup: &types.SetupGuide{
			Prerequisites: []string{"Go 1.24", "Docker"},
			Steps:         []string{"cp .env.example .env", "make dev"},
		},
		KeyFiles: []types.KeyFile{
			{Path: "cmd/billing/main.go", Type: "entrypoint", Description: "Wires the server"},
		},
	}
}
