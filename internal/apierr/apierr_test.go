package apierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindNotFound, "search page", "no page titled %q", "Roadmap")
	wrapped := fmt.Errorf("resolve parent: %w", err)

	if !errors.Is(wrapped, NotFound) {
		t.Errorf("errors.Is(wrapped, NotFound) = false, want true")
	}
	if errors.Is(wrapped, Ambiguous) {
		t.Errorf("errors.Is(wrapped, Ambiguous) = true, want false")
	}
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf() = %q, want %q", got, KindNotFound)
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}

func TestPartialCarriesPage(t *testing.T) {
	cause := New(KindTransient, "add comment", "gave up")
	err := Partial("document session", PageRef{ID: "42", URL: "https://kb/x"}, cause)

	if KindOf(err) != KindPartialSuccess {
		t.Fatalf("KindOf() = %q, want %q", KindOf(err), KindPartialSuccess)
	}
	page := PageOf(err)
	if page == nil || page.ID != "42" {
		t.Fatalf("PageOf() = %+v, want page 42", page)
	}
	if !strings.Contains(err.Error(), "page 42 was created") {
		t.Errorf("Error() = %q, want mention of created page", err.Error())
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindAuthFailed, Op: "test connection", Status: 401, Body: "Unauthorized"}
	want := "test connection: auth failed (status 401): Unauthorized"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize([]byte("  {\n  \"message\":  \"bad\"\n}  ")); got != `{ "message": "bad" }` {
		t.Errorf("Summarize() = %q", got)
	}
	long := strings.Repeat("x", maxBodySummary+50)
	if got := Summarize([]byte(long)); len(got) != maxBodySummary+3 {
		t.Errorf("Summarize(long) length = %d, want %d", len(got), maxBodySummary+3)
	}
}
