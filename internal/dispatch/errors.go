package dispatch

import (
	"errors"

	"github.com/scribe-docs/scribe/internal/apierr"
)

// hints tells the user what to do about each kind of failure.
var hints = map[apierr.Kind]string{
	apierr.KindConfigInvalid:   "Set the missing values in .scribe/config.yaml or SCRIBE_* environment variables, then check them with 'scribe config show'.",
	apierr.KindInvalidInput:    "Check the operation arguments.",
	apierr.KindAuthFailed:      "Check email and api_token. The token may have expired or lack access to this space or project.",
	apierr.KindNotFound:        "Check the title, page id or issue key and the space it lives in.",
	apierr.KindParentMissing:   "Create the parent page first, choose another parent, or allow a standalone page.",
	apierr.KindAmbiguous:       "Several pages share that title. Use the page id instead.",
	apierr.KindVersionConflict: "The page was edited while updating. Fetch it again and retry.",
	apierr.KindTransient:       "The service is unavailable or rate limiting. Try again later.",
	apierr.KindRejected:        "The service refused the request. See the message for details.",
	apierr.KindPartialSuccess:  "The page exists. Retry or finish the failed step by hand.",
}

// Hint returns the hint for a failure kind.
func Hint(kind apierr.Kind) string {
	return hints[kind]
}

// failure builds the Result of a failed operation. data is kept only for
// partial successes, where it describes what was done.
func failure(op string, data interface{}, err error) *Result {
	body := &ErrorBody{Message: err.Error()}
	var e *apierr.Error
	if errors.As(err, &e) {
		body.Kind = e.Kind
		body.Status = e.Status
		body.Page = e.Page
		body.Hint = Hint(e.Kind)
	}
	r := &Result{Op: op, Error: body}
	if body.Kind == apierr.KindPartialSuccess {
		r.Data = data
	}
	return r
}

// Err reconstructs an error from a failed Result, for callers that want to
// keep using errors.Is on the outcome.
func (r *Result) Err() error {
	if r.OK || r.Error == nil {
		return nil
	}
	return &apierr.Error{Kind: r.Error.Kind, Message: r.Error.Message, Page: r.Error.Page}
}
