package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/session"
	"github.com/scribe-docs/scribe/internal/timeparsing"
	"github.com/scribe-docs/scribe/internal/ui"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	GroupID: "docs",
	Short:   "Publish a work-session record as a page",
	Long: `Render a work-session record (yaml, toml or json) into a page, nest it under
a parent page and link it to a tracker issue.

When the parent page does not exist the command asks whether to create the
page at the space root. Pass --standalone to skip the question, which is
also the only way to get a root-level page when not attached to a terminal.

Exit codes: 0 success, 1 failure, 2 invalid input or configuration,
3 page created but a follow-up step (such as the issue comment) failed.`,
	Example: `  scribe document --session session.yaml --parent "Engineering Notes" --issue PROJ-123
  scribe template session > s.yaml && $EDITOR s.yaml && scribe document --session s.yaml
  cat session.json | scribe document --session - --at "yesterday 5pm"`,
	Args: cobra.NoArgs,
	Run:  runDocument,
}

var documentProjectCmd = &cobra.Command{
	Use:     "document-project",
	GroupID: "docs",
	Short:   "Publish a project overview page and its child pages",
	Long: `Publish a project documentation tree: one overview page and one child page per
section present in the docs file. Running it again updates the overview and
reuses existing child pages.`,
	Example: `  scribe document-project --docs project.yaml --parent "Projects"`,
	Args:    cobra.NoArgs,
	Run:     runDocumentProject,
}

func init() {
	documentCmd.Flags().String("session", "", "Work-session record file, or - for stdin (required)")
	documentCmd.Flags().String("title", "", "Page title (default: task name, prefixed with the issue key)")
	documentCmd.Flags().String("space", "", "Space key (default: configured space)")
	documentCmd.Flags().String("parent", "", "Title of the parent page")
	documentCmd.Flags().String("issue", "", "Issue to link and comment on (overrides linked_issue in the record)")
	documentCmd.Flags().String("comment", "", "Custom issue comment; a link to the page is appended")
	documentCmd.Flags().Bool("no-comment", false, "Do not comment on the linked issue")
	documentCmd.Flags().Bool("standalone", false, "Create the page at the space root if the parent is missing")
	documentCmd.Flags().String("at", "", "When the work was documented: -2h, 2025-01-31, RFC3339 or e.g. \"yesterday 5pm\"")
	_ = documentCmd.MarkFlagRequired("session")

	documentProjectCmd.Flags().String("docs", "", "Project docs file, or - for stdin (required)")
	documentProjectCmd.Flags().String("space", "", "Space key (default: configured space)")
	documentProjectCmd.Flags().String("parent", "", "Title of the parent page")
	documentProjectCmd.Flags().Bool("standalone", false, "Create the tree at the space root if the parent is missing")
	_ = documentProjectCmd.MarkFlagRequired("docs")

	rootCmd.AddCommand(documentCmd, documentProjectCmd)
}

func runDocument(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("session")
	rec, err := session.LoadRecord(path, os.Stdin)
	if err != nil {
		FatalAPIError(err)
	}
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		t, err := timeparsing.ParseRelativeTime(at, time.Now())
		if err != nil {
			FatalErrorWithHint(err.Error(), "Examples: --at -3h, --at 2025-01-31, --at \"yesterday 5pm\"", dispatch.ExitUsage)
		}
		rec.DocumentedAt = t
	}

	a := dispatch.DocumentSessionArgs{Record: rec}
	a.Title, _ = cmd.Flags().GetString("title")
	a.Space, _ = cmd.Flags().GetString("space")
	a.ParentTitle, _ = cmd.Flags().GetString("parent")
	a.Comment, _ = cmd.Flags().GetString("comment")
	a.NoComment, _ = cmd.Flags().GetBool("no-comment")
	a.AllowStandalone, _ = cmd.Flags().GetBool("standalone")
	if issue, _ := cmd.Flags().GetString("issue"); issue != "" {
		a.IssueKey = expandIssueRef(issue, loadCredentials().JiraProjectKey)
	}

	d := newDispatcher()
	res := d.Call(rootCtx, dispatch.OpDocumentSession, a)
	if retryStandalone(res, a.ParentTitle) {
		a.AllowStandalone = true
		res = d.Call(rootCtx, dispatch.OpDocumentSession, a)
	}
	emitResult(res)
}

func runDocumentProject(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("docs")
	docs, err := session.LoadProjectDocs(path, os.Stdin)
	if err != nil {
		FatalAPIError(err)
	}

	a := dispatch.DocumentProjectArgs{Docs: docs}
	a.Space, _ = cmd.Flags().GetString("space")
	a.ParentTitle, _ = cmd.Flags().GetString("parent")
	a.AllowStandalone, _ = cmd.Flags().GetBool("standalone")

	d := newDispatcher()
	res := d.Call(rootCtx, dispatch.OpDocumentProject, a)
	if retryStandalone(res, a.ParentTitle) {
		a.AllowStandalone = true
		res = d.Call(rootCtx, dispatch.OpDocumentProject, a)
	}
	emitResult(res)
}

// retryStandalone asks whether to publish at the space root after the
// parent page was not found. It only asks on an interactive terminal.
func retryStandalone(res *dispatch.Result, parent string) bool {
	if res.OK || res.Error == nil || res.Error.Kind != apierr.KindParentMissing {
		return false
	}
	if jsonOutput || ui.IsAgentMode() || !term.IsTerminal(int(os.Stdin.Fd())) || !ui.IsTerminal() {
		return false
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Parent page %q was not found.", parent)).
				Description("Create the page at the space root instead?").
				Affirmative("Create at root").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false
		}
		WarnError("prompt failed: %v", err)
		return false
	}
	return confirmed
}
