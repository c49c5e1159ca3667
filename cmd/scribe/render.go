package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/types"
	"github.com/scribe-docs/scribe/internal/ui"
)

// renderData formats operation data for the terminal. Unknown data types
// fall back to their JSON-ish Go representation.
func renderData(data interface{}) string {
	switch v := data.(type) {
	case *types.Page:
		return renderPage(v)
	case *types.Space:
		return ui.KeyValues([][2]string{{"Space", v.Key}, {"Name", v.Name}, {"URL", v.URL}})
	case *dispatch.ConnectionInfo:
		return fmt.Sprintf("%s Connected to %s at %s as %s\n",
			ui.RenderPassIcon(), v.Service, v.URL, ui.RenderAccent(v.User.Name()))
	case *dispatch.IssueDetails:
		return renderIssue(v)
	case *dispatch.CommentInfo:
		return fmt.Sprintf("%s Comment added to %s %s\n", ui.RenderPassIcon(), v.IssueKey, ui.RenderMuted(v.URL))
	case *dispatch.SessionOutcome:
		return renderSession(v)
	case *dispatch.ProjectOutcome:
		return renderProject(v)
	default:
		return fmt.Sprintf("%+v\n", v)
	}
}

func renderPage(p *types.Page) string {
	rows := [][2]string{
		{"ID", p.ID},
		{"Title", p.Title},
		{"Space", p.SpaceKey},
		{"Parent", p.ParentID},
		{"URL", p.URL},
	}
	if p.Version > 0 {
		rows = append(rows, [2]string{"Version", strconv.Itoa(p.Version)})
	}
	return ui.KeyValues(rows)
}

func renderIssue(is *dispatch.IssueDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ui.RenderAccent(is.Key), is.Summary)
	rows := [][2]string{
		{"Type", is.IssueType},
		{"Status", is.Status},
		{"Priority", is.Priority},
		{"Assignee", is.Assignee},
		{"URL", is.URL},
	}
	if is.Updated != nil {
		rows = append(rows, [2]string{"Updated", is.Updated.Local().Format("2006-01-02 15:04")})
	}
	b.WriteString(ui.KeyValues(rows))
	if d := strings.TrimSpace(is.Description); d != "" {
		b.WriteString("\n" + ui.Indent(ui.WrapText(d, ui.TerminalWidth(80)-2), "  ") + "\n")
	}
	return b.String()
}

func renderSession(out *dispatch.SessionOutcome) string {
	var b strings.Builder
	if out.Page != nil {
		fmt.Fprintf(&b, "%s Documented %s\n", ui.RenderPassIcon(), ui.RenderAccent(out.Page.Title))
		rows := [][2]string{{"URL", out.Page.URL}}
		switch {
		case out.Parent != nil:
			rows = append(rows, [2]string{"Parent", out.Parent.Title})
		case out.Standalone:
			rows = append(rows, [2]string{"Parent", "(space root)"})
		}
		if out.Issue != nil {
			rows = append(rows, [2]string{"Issue", out.Issue.Key + " " + out.Issue.Summary})
		}
		if out.Comment != nil {
			rows = append(rows, [2]string{"Comment", orDash(out.Comment.URL)})
		}
		b.WriteString(ui.Indent(ui.KeyValues(rows), "  "))
	}
	writeWarnings(&b, out.Warnings)
	return b.String()
}

func renderProject(out *dispatch.ProjectOutcome) string {
	var b strings.Builder
	line := func(p dispatch.ProjectPage, prefix string) {
		if p.Page == nil {
			return
		}
		state := "updated"
		if p.Created {
			state = "created"
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, p.Page.Title, ui.RenderMuted("("+state+")"), ui.RenderMuted(p.Page.URL))
	}
	if out.Overview.Page != nil {
		fmt.Fprintf(&b, "%s Project documentation published\n", ui.RenderPassIcon())
	}
	line(out.Overview, "  ")
	for _, c := range out.Children {
		line(c, "    "+ui.TreeChild)
	}
	writeWarnings(&b, out.Warnings)
	return b.String()
}

func writeWarnings(b *strings.Builder, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(b, "%s %s\n", ui.RenderWarnIcon(), w)
	}
}
