package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/types"
	"github.com/scribe-docs/scribe/internal/ui"
)

const (
	statusOK      = "ok"
	statusSkipped = "skipped"
	statusError   = "error"
)

type doctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // statusOK, statusSkipped, or statusError
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "setup",
	Short:   "Check configuration, credentials and the default space",
	Long: `Run every setup check at once: the knowledge-base connection, the
issue-tracker connection (when configured) and the default space. Exits
non-zero when any check fails.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		creds := loadCredentials()
		checks := runDoctorChecks(rootCtx, newDispatcher(), creds)

		failed := false
		for _, c := range checks {
			if c.Status == statusError {
				failed = true
			}
		}
		if jsonOutput {
			outputJSON(checks)
		} else {
			printDoctorChecks(checks)
		}
		if failed {
			exit(dispatch.ExitFailure)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runDoctorChecks runs the independent checks concurrently. Results keep a
// fixed order regardless of completion order.
func runDoctorChecks(ctx context.Context, d *dispatch.Dispatcher, creds *config.Credentials) []doctorCheck {
	checks := make([]doctorCheck, 3)
	var g errgroup.Group

	g.Go(func() error {
		checks[0] = connectionCheck("Knowledge base", d.Call(ctx, dispatch.OpTestConnection, nil))
		return nil
	})
	g.Go(func() error {
		if !creds.HasJira() {
			checks[1] = doctorCheck{Name: "Issue tracker", Status: statusSkipped, Message: "not configured"}
			return nil
		}
		checks[1] = connectionCheck("Issue tracker", d.Call(ctx, dispatch.OpTestIssueConnection, nil))
		return nil
	})
	g.Go(func() error {
		checks[2] = spaceCheck(creds.SpaceKey, d.Call(ctx, dispatch.OpVerifySpace, nil))
		return nil
	})
	_ = g.Wait()
	return checks
}

func failedCheck(name string, res *dispatch.Result) doctorCheck {
	c := doctorCheck{Name: name, Status: statusError, Message: "failed"}
	if res.Error != nil {
		c.Message = res.Error.Message
		c.Fix = res.Error.Hint
	}
	return c
}

func connectionCheck(name string, res *dispatch.Result) doctorCheck {
	if !res.OK {
		return failedCheck(name, res)
	}
	info, _ := res.Data.(*dispatch.ConnectionInfo)
	if info == nil {
		return doctorCheck{Name: name, Status: statusOK, Message: "connected"}
	}
	return doctorCheck{
		Name:    name,
		Status:  statusOK,
		Message: fmt.Sprintf("connected to %s as %s", info.URL, info.User.Name()),
	}
}

func spaceCheck(key string, res *dispatch.Result) doctorCheck {
	name := "Space " + key
	if !res.OK {
		return failedCheck(name, res)
	}
	if sp, _ := res.Data.(*types.Space); sp != nil {
		return doctorCheck{Name: name, Status: statusOK, Message: sp.Name}
	}
	return doctorCheck{Name: name, Status: statusOK, Message: "exists"}
}

func printDoctorChecks(checks []doctorCheck) {
	for _, c := range checks {
		icon := ui.RenderPassIcon()
		switch c.Status {
		case statusError:
			icon = ui.RenderFailIcon()
		case statusSkipped:
			icon = ui.RenderMuted("-")
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", icon, c.Name, c.Message)
		if c.Fix != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", ui.RenderMuted(c.Fix))
		}
	}
}
