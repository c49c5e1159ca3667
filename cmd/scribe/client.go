package main

import (
	"regexp"

	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/debug"
	"github.com/scribe-docs/scribe/internal/dispatch"
)

var loadedCreds *config.Credentials

// loadCredentials loads and validates configuration once per process.
func loadCredentials() *config.Credentials {
	if loadedCreds != nil {
		return loadedCreds
	}
	creds, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		FatalAPIError(err)
	}
	if creds.Source != "" {
		debug.Logf("config: using %s\n", creds.Source)
	}
	loadedCreds = creds
	return creds
}

// newDispatcher builds a Dispatcher from the loaded configuration.
func newDispatcher() *dispatch.Dispatcher {
	creds := loadCredentials()
	d, err := dispatch.FromCredentials(creds, dispatch.BuildOptions{
		Logger:    debug.Logger(),
		UserAgent: "scribe/" + Version,
	})
	if err != nil {
		FatalAPIError(err)
	}
	return d
}

// runOp dispatches one operation and reports its result.
func runOp(op string, args interface{}) {
	emitResult(newDispatcher().Call(rootCtx, op, args))
}

var issueNumberRe = regexp.MustCompile(`^\d+$`)

// expandIssueRef turns a bare issue number into a key using the configured
// project key; anything else is passed through for the dispatcher to check.
func expandIssueRef(ref, projectKey string) string {
	if projectKey != "" && issueNumberRe.MatchString(ref) {
		return projectKey + "-" + ref
	}
	return ref
}
