package markup

import (
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/types"
)

// Section headings of the work-session page.
const (
	SectionIssue    = "Jira Ticket"
	SectionOverview = "Overview"
	SectionActions  = "What Was Done"
	SectionFiles    = "Key Files"
	SectionCode     = "Code/Scripts"
	SectionCommands = "Commands Run"
	SectionRecreate = "How to Recreate"
	SectionErrors   = "Errors Encountered"
	SectionNotes    = "Notes"
)

// RenderWorkSession renders a work-session page. Optional sections are
// omitted when their input is empty; the only failure is a missing task name.
func RenderWorkSession(r *types.WorkSessionRecord) (Content, error) {
	if r == nil {
		return "", apierr.New(apierr.KindInvalidInput, "render work session", "record is required")
	}
	if err := r.Validate(); err != nil {
		return "", &apierr.Error{Kind: apierr.KindInvalidInput, Op: "render work session", Err: err}
	}

	var p page

	if r.LinkedIssue != nil {
		p.heading(SectionIssue)
		p.raw(IssuePanel(*r.LinkedIssue))
	}

	p.heading(SectionOverview)
	p.para(r.Overview)

	if len(r.ActionsDone) > 0 {
		p.heading(SectionActions)
		p.list(r.ActionsDone, false)
	}

	if len(r.FilesInvolved) > 0 {
		p.heading(SectionFiles)
		var b strings.Builder
		b.WriteString("<ul>")
		for _, f := range r.FilesInvolved {
			b.WriteString("<li><code>" + Escape(f.Path) + "</code>")
			if !blank(f.Description) {
				b.WriteString(" - " + Escape(f.Description))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
		p.raw(b.String())
	}

	var snippets []types.CodeSnippet
	for _, s := range r.CodeSnippets {
		if !blank(s.Code) {
			snippets = append(snippets, s)
		}
	}
	if len(snippets) > 0 {
		p.heading(SectionCode)
		for _, s := range snippets {
			p.raw(CodeBlock(s.Code, s.Language, CodeOptions{Title: s.Title}))
		}
	}

	if len(r.CommandsRun) > 0 {
		p.heading(SectionCommands)
		p.raw(CodeBlock(strings.Join(r.CommandsRun, "\n"), "bash", CodeOptions{Title: "Commands Executed"}))
	}

	if len(r.HowToRecreate) > 0 {
		p.heading(SectionRecreate)
		p.list(r.HowToRecreate, true)
	}

	if !blank(r.ErrorsEncountered) {
		p.heading(SectionErrors)
		p.raw(Panel(PanelWarning, "<p>"+Escape(r.ErrorsEncountered)+"</p>"))
	}

	if !blank(r.Notes) {
		p.heading(SectionNotes)
		p.para(r.Notes)
	}

	footer := "Documented by: " + r.Author()
	if !r.DocumentedAt.IsZero() {
		footer += " on " + r.DocumentedAt.Format(timestampLayout)
	}
	p.raw("<p><em>" + Escape(footer) + "</em></p>")

	return p.finish()
}

// IssuePanel renders the fixed-field tracker panel.
func IssuePanel(is types.IssueSummary) string {
	rows := [][2]string{
		{"Ticket", Link(is.URL, is.Key)},
		{"Summary", Escape(is.Summary)},
	}
	if is.IssueType != "" {
		rows = append(rows, [2]string{"Type", Escape(is.IssueType)})
	}
	rows = append(rows,
		[2]string{"Status", "<strong>" + Escape(is.Status) + "</strong>"},
		[2]string{"Priority", Escape(is.Priority)},
		[2]string{"Assignee", Escape(orDefault(is.Assignee, "Unassigned"))},
	)
	return Panel(PanelInfo, fieldTable(rows))
}

func orDefault(s, def string) string {
	if blank(s) {
		return def
	}
	return s
}
