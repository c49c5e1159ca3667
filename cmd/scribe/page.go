package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/markup"
	"github.com/scribe-docs/scribe/internal/types"
	"github.com/scribe-docs/scribe/internal/ui"
)

var searchPageCmd = &cobra.Command{
	Use:     "search-page TITLE",
	GroupID: "pages",
	Short:   "Find a page by exact title",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		space, _ := cmd.Flags().GetString("space")
		runOp(dispatch.OpSearchPage, dispatch.SearchPageArgs{Title: args[0], Space: space})
	},
}

var getPageCmd = &cobra.Command{
	Use:     "get-page ID",
	GroupID: "pages",
	Short:   "Show a page, optionally with its body",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showBody, _ := cmd.Flags().GetBool("body")
		res := newDispatcher().Call(rootCtx, dispatch.OpGetPage, dispatch.PageIDArgs{PageID: args[0]})
		page, ok := res.Data.(*types.Page)
		if jsonOutput || !res.OK || !ok || !showBody {
			if ok && !showBody {
				page.Body = ""
			}
			emitResult(res)
			return
		}

		fmt.Print(renderPage(page))
		md, err := markup.ToMarkdown(markup.Content(page.Body))
		if err != nil {
			WarnError("page body is not well-formed, showing raw markup: %v", err)
			md = page.Body
		}
		fmt.Println()
		if err := ui.ToPager(cmd.OutOrStdout(), ui.RenderMarkdown(md), ui.PagerOptions{}); err != nil {
			FatalError("%v", err)
		}
	},
}

var createPageCmd = &cobra.Command{
	Use:     "create-page TITLE",
	GroupID: "pages",
	Short:   "Create a page, optionally under a parent",
	Example: `  scribe create-page "Runbook" --content "<p>Steps</p>"
  scribe create-page "Login fix" --content-file body.xml --parent-title "Engineering Notes"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		space, _ := cmd.Flags().GetString("space")
		parentID, _ := cmd.Flags().GetString("parent-id")
		parentTitle, _ := cmd.Flags().GetString("parent-title")
		runOp(dispatch.OpCreatePage, dispatch.CreatePageArgs{
			Title:       args[0],
			Content:     mustReadContent(cmd),
			Space:       space,
			ParentID:    parentID,
			ParentTitle: parentTitle,
		})
	},
}

var updatePageCmd = &cobra.Command{
	Use:     "update-page ID",
	GroupID: "pages",
	Short:   "Replace a page's title and body",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		runOp(dispatch.OpUpdatePage, dispatch.UpdatePageArgs{
			PageID:  args[0],
			Title:   title,
			Content: mustReadContent(cmd),
		})
	},
}

func init() {
	searchPageCmd.Flags().String("space", "", "Space key (default: configured space)")

	getPageCmd.Flags().Bool("body", false, "Render the page body as markdown")

	createPageCmd.Flags().String("space", "", "Space key (default: configured space)")
	createPageCmd.Flags().String("parent-id", "", "ID of the parent page")
	createPageCmd.Flags().String("parent-title", "", "Title of the parent page")
	createPageCmd.MarkFlagsMutuallyExclusive("parent-id", "parent-title")
	addContentFlags(createPageCmd)

	updatePageCmd.Flags().String("title", "", "New page title (required)")
	_ = updatePageCmd.MarkFlagRequired("title")
	addContentFlags(updatePageCmd)

	rootCmd.AddCommand(searchPageCmd, getPageCmd, createPageCmd, updatePageCmd)
}
