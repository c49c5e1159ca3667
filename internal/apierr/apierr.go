// Package apierr defines the failure taxonomy shared by the transport clients,
// the hierarchy resolver and the dispatcher.
//
// Every failure that crosses a package boundary is an *Error carrying a Kind.
// Callers branch on the kind with errors.Is against the sentinel values
// (apierr.NotFound, apierr.Ambiguous, ...) or unpack the full value with
// errors.As when they need the HTTP status or the page reference of a
// partially completed operation.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfigInvalid   Kind = "config_invalid"
	KindInvalidInput    Kind = "invalid_input"
	KindAuthFailed      Kind = "auth_failed"
	KindNotFound        Kind = "not_found"
	KindParentMissing   Kind = "parent_missing"
	KindAmbiguous       Kind = "ambiguous"
	KindVersionConflict Kind = "version_conflict"
	KindTransient       Kind = "transient"
	KindRejected        Kind = "rejected"
	KindPartialSuccess  Kind = "partial_success"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ConfigInvalid   = &Error{Kind: KindConfigInvalid}
	InvalidInput    = &Error{Kind: KindInvalidInput}
	AuthFailed      = &Error{Kind: KindAuthFailed}
	NotFound        = &Error{Kind: KindNotFound}
	ParentMissing   = &Error{Kind: KindParentMissing}
	Ambiguous       = &Error{Kind: KindAmbiguous}
	VersionConflict = &Error{Kind: KindVersionConflict}
	Transient       = &Error{Kind: KindTransient}
	Rejected        = &Error{Kind: KindRejected}
	PartialSuccess  = &Error{Kind: KindPartialSuccess}
)

// maxBodySummary bounds how much of a response body ends up in messages.
const maxBodySummary = 300

// PageRef identifies a page that exists remotely even though the operation
// that created it did not fully succeed.
type PageRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Op      string   // operation that failed, e.g. "search page"
	Message string   // human readable detail
	Status  int      // HTTP status, 0 when no response was received
	Body    string   // trimmed response body
	Page    *PageRef // set for PartialSuccess
	Err     error    // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error with a formatted message.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Partial reports that page was created but a dependent step failed.
func Partial(op string, page PageRef, cause error) *Error {
	return &Error{
		Kind:    KindPartialSuccess,
		Op:      op,
		Message: fmt.Sprintf("page %s was created but a follow-up step failed", page.ID),
		Page:    &page,
		Err:     cause,
	}
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PageOf returns the page reference carried by err, if any.
func PageOf(err error) *PageRef {
	var e *Error
	if errors.As(err, &e) {
		return e.Page
	}
	return nil
}

// Summarize trims a response body to a single short line.
func Summarize(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if r := []rune(s); len(r) > maxBodySummary {
		s = string(r[:maxBodySummary]) + "..."
	}
	return s
}

// Retryable reports whether the failure is worth another attempt.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}
