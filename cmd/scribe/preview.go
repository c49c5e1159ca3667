package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/markup"
	"github.com/scribe-docs/scribe/internal/session"
	"github.com/scribe-docs/scribe/internal/types"
	"github.com/scribe-docs/scribe/internal/ui"
)

var previewCmd = &cobra.Command{
	Use:     "preview",
	GroupID: "docs",
	Short:   "Render a record locally without publishing it",
	Long: `Render a work-session record or a project docs file exactly as it would be
published. By default the page is shown as markdown in the terminal; --raw
prints the storage-format markup instead.`,
	Example: `  scribe preview --session session.yaml
  scribe preview --session session.yaml --watch
  scribe preview --docs project.yaml --raw > pages.xml`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sessionPath, _ := cmd.Flags().GetString("session")
		docsPath, _ := cmd.Flags().GetString("docs")
		raw, _ := cmd.Flags().GetBool("raw")
		noPager, _ := cmd.Flags().GetBool("no-pager")
		watch, _ := cmd.Flags().GetBool("watch")

		if watch {
			path := sessionPath
			if path == "" {
				path = docsPath
			}
			if path == "-" {
				FatalErrorWithHint("--watch needs a file, not stdin", "pass a path to --session or --docs", dispatch.ExitUsage)
			}
			watchPreview(path, func() { showPreview(cmd.OutOrStdout(), sessionPath, docsPath, raw) })
			return
		}

		var pages []previewPage
		var err error
		if sessionPath != "" {
			pages, err = previewSession(sessionPath)
		} else {
			pages, err = previewProject(docsPath)
		}
		if err != nil {
			FatalAPIError(err)
		}

		out, err := formatPreview(pages, raw)
		if err != nil {
			FatalAPIError(err)
		}
		if raw || jsonOutput {
			fmt.Print(out)
			return
		}
		if err := ui.ToPager(cmd.OutOrStdout(), ui.RenderMarkdown(out), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("%v", err)
		}
	},
}

func init() {
	previewCmd.Flags().String("session", "", "Work-session record file, or - for stdin")
	previewCmd.Flags().String("docs", "", "Project docs file, or - for stdin")
	previewCmd.Flags().Bool("raw", false, "Print storage-format markup instead of markdown")
	previewCmd.Flags().Bool("no-pager", false, "Do not pipe output through a pager")
	previewCmd.Flags().Bool("watch", false, "Re-render whenever the file changes")
	previewCmd.MarkFlagsMutuallyExclusive("session", "docs")
	previewCmd.MarkFlagsOneRequired("session", "docs")

	rootCmd.AddCommand(previewCmd)
}

type previewPage struct {
	Title   string
	Content markup.Content
}

func previewSession(path string) ([]previewPage, error) {
	rec, err := session.LoadRecord(path, os.Stdin)
	if err != nil {
		return nil, err
	}
	if rec.DocumentedAt.IsZero() {
		rec.DocumentedAt = time.Now()
	}
	c, err := markup.RenderWorkSession(rec)
	if err != nil {
		return nil, err
	}
	return []previewPage{{Title: rec.PageTitle(), Content: c}}, nil
}

func previewProject(path string) ([]previewPage, error) {
	docs, err := session.LoadProjectDocs(path, os.Stdin)
	if err != nil {
		return nil, err
	}
	if docs.Overview.GeneratedAt.IsZero() {
		docs.Overview.GeneratedAt = time.Now()
	}
	sections := markup.ProjectSections(docs)
	for _, s := range sections {
		docs.Overview.ChildPages = append(docs.Overview.ChildPages, types.ChildLink{Title: s.Name})
	}
	overview, err := markup.RenderProjectOverview(&docs.Overview)
	if err != nil {
		return nil, err
	}
	pages := []previewPage{{Title: strings.TrimSpace(docs.Overview.Name), Content: overview}}
	for _, s := range sections {
		c, err := s.Render()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		pages = append(pages, previewPage{Title: docs.ChildTitle(s.Name), Content: c})
	}
	return pages, nil
}

// formatPreview joins the pages under a top-level title each, as markup or
// as markdown.
func formatPreview(pages []previewPage, raw bool) (string, error) {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		if raw {
			fmt.Fprintf(&b, "<!-- %s -->\n%s\n", p.Title, p.Content)
			continue
		}
		md, err := markup.ToMarkdown(p.Content)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "# %s\n\n%s", p.Title, md)
	}
	return b.String(), nil
}

// showPreview renders once without a pager. Errors are printed rather than
// fatal so a watch survives a half-saved file.
func showPreview(out io.Writer, sessionPath, docsPath string, raw bool) {
	var pages []previewPage
	var err error
	if sessionPath != "" {
		pages, err = previewSession(sessionPath)
	} else {
		pages, err = previewProject(docsPath)
	}
	if err == nil {
		var text string
		if text, err = formatPreview(pages, raw); err == nil {
			if !raw {
				text = ui.RenderMarkdown(text)
			}
			_, _ = fmt.Fprint(out, text)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
}

// watchPreview calls render now and again after each change to path until
// the root context is cancelled. The parent directory is watched because
// editors often replace files instead of writing them in place.
func watchPreview(path string, render func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		FatalError("creating watcher: %v", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		FatalError("watching %s: %v", path, err)
	}
	target := filepath.Base(path)

	render()
	fmt.Fprintf(os.Stderr, "\nWatching %s for changes... (Press Ctrl+C to exit)\n", path)

	var debounce *time.Timer
	const debounceDelay = 300 * time.Millisecond
	for {
		select {
		case <-rootCtx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				render()
				fmt.Fprintf(os.Stderr, "\nWatching %s for changes... (Press Ctrl+C to exit)\n", path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}
