package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribe-docs/scribe/internal/debug"
	"github.com/scribe-docs/scribe/internal/telemetry"
	"github.com/scribe-docs/scribe/internal/ui"
)

var (
	jsonOutput  bool
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output
	configFile  string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output the operation result as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: .scribe/config.* or ~/.config/scribe/config.*)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "docs", Title: "Documenting Work:"})
	rootCmd.AddGroup(&cobra.Group{ID: "pages", Title: "Pages & Spaces:"})
	rootCmd.AddGroup(&cobra.Group{ID: "issues", Title: "Issues:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Integrations:"})
}

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "scribe - publish work-session and project documentation",
	Long: `scribe renders structured records of completed work into knowledge-base pages,
nests them under the right parent page and links them to tracker issues.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("scribe version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
		ui.ApplyColorProfile()
		if err := telemetry.Init(rootCtx, "scribe", Version); err != nil {
			WarnError("telemetry disabled: %v", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// shutdown flushes telemetry and releases the signal context. It runs on
// every exit path, including exit.
func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)
	if rootCancel != nil {
		rootCancel()
	}
}

// exit terminates the process after flushing telemetry.
func exit(code int) {
	shutdown()
	os.Exit(code)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
