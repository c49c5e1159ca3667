package main

import (
	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

var testConnectionCmd = &cobra.Command{
	Use:     "test-connection",
	GroupID: "setup",
	Short:   "Check the knowledge-base credentials",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runOp(dispatch.OpTestConnection, nil)
	},
}

var testIssueConnectionCmd = &cobra.Command{
	Use:     "test-issue-connection",
	GroupID: "setup",
	Short:   "Check the issue-tracker credentials",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runOp(dispatch.OpTestIssueConnection, nil)
	},
}

func init() {
	rootCmd.AddCommand(testConnectionCmd, testIssueConnectionCmd)
}
