package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

var getIssueCmd = &cobra.Command{
	Use:     "get-issue KEY",
	GroupID: "issues",
	Short:   "Show an issue from the tracker",
	Long: `Show an issue from the tracker. KEY may be an issue key (PROJ-123), a browse
URL, or a bare number when jira_project_key is configured.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := newDispatcher()
		key := expandIssueRef(args[0], loadCredentials().JiraProjectKey)
		emitResult(d.Call(rootCtx, dispatch.OpGetIssue, dispatch.IssueArgs{IssueKey: key}))
	},
}

var addIssueCommentCmd = &cobra.Command{
	Use:     "add-issue-comment KEY",
	GroupID: "issues",
	Short:   "Add a plain-text comment to an issue",
	Example: `  scribe add-issue-comment PROJ-123 -m "Documented in the runbook"
  git log -1 --format=%B | scribe add-issue-comment PROJ-123 --stdin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		comment, _ := cmd.Flags().GetString("message")
		if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				FatalError("read comment from stdin: %v", err)
			}
			comment = string(data)
		}
		d := newDispatcher()
		key := expandIssueRef(args[0], loadCredentials().JiraProjectKey)
		emitResult(d.Call(rootCtx, dispatch.OpAddIssueComment, dispatch.CommentArgs{IssueKey: key, Comment: strings.TrimSpace(comment)}))
	},
}

func init() {
	addIssueCommentCmd.Flags().StringP("message", "m", "", "Comment text")
	addIssueCommentCmd.Flags().Bool("stdin", false, "Read the comment from stdin")
	addIssueCommentCmd.MarkFlagsMutuallyExclusive("message", "stdin")

	rootCmd.AddCommand(getIssueCmd, addIssueCommentCmd)
}
