package main

import (
	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

var verifySpaceCmd = &cobra.Command{
	Use:     "verify-space [KEY]",
	GroupID: "pages",
	Short:   "Confirm a space exists (default: the configured space)",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var a dispatch.SpaceArgs
		if len(args) == 1 {
			a.Space = args[0]
		}
		runOp(dispatch.OpVerifySpace, a)
	},
}

var createSpaceCmd = &cobra.Command{
	Use:     "create-space KEY",
	GroupID: "pages",
	Short:   "Create a knowledge-base space",
	Example: `  scribe create-space ENG --name "Engineering" --description "Team docs"`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		runOp(dispatch.OpCreateSpace, dispatch.CreateSpaceArgs{Key: args[0], Name: name, Description: description})
	},
}

func init() {
	createSpaceCmd.Flags().String("name", "", "Display name of the space (required)")
	createSpaceCmd.Flags().String("description", "", "Plain-text description")
	_ = createSpaceCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(verifySpaceCmd, createSpaceCmd)
}
