package debug

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// reset restores the package switches after a test flips them.
func reset(t *testing.T) {
	t.Helper()
	e, v, q := enabled, verboseMode, quietMode
	t.Cleanup(func() { enabled, verboseMode, quietMode = e, v, q })
}

// capture redirects *target (os.Stdout or os.Stderr) while fn runs.
func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	old := *target
	*target = w
	fn()
	*target = old
	_ = w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

func TestEnabledSources(t *testing.T) {
	reset(t)

	enabled, verboseMode = false, false
	if Enabled() {
		t.Fatal("Enabled() = true with SCRIBE_DEBUG unset and no --verbose")
	}
	SetVerbose(true)
	if !Enabled() {
		t.Error("Enabled() = false after SetVerbose(true)")
	}
	SetVerbose(false)
	enabled = true
	if !Enabled() {
		t.Error("Enabled() = false with SCRIBE_DEBUG set")
	}
}

func TestLogfGoesToStderrOnlyWhenEnabled(t *testing.T) {
	reset(t)

	enabled, verboseMode = false, false
	if got := capture(t, &os.Stderr, func() { Logf("config: using %s\n", ".scribe/config.yaml") }); got != "" {
		t.Errorf("Logf() while disabled wrote %q", got)
	}

	SetVerbose(true)
	got := capture(t, &os.Stderr, func() { Logf("config: using %s\n", ".scribe/config.yaml") })
	if got != "config: using .scribe/config.yaml\n" {
		t.Errorf("Logf() = %q", got)
	}
}

func TestQuietSuppressesNormalOutput(t *testing.T) {
	reset(t)

	SetQuiet(false)
	got := capture(t, &os.Stdout, func() {
		PrintNormal("created %s\n", "1001")
		PrintlnNormal("parent", "Engineering Notes")
	})
	if got != "created 1001\nparent Engineering Notes\n" {
		t.Errorf("normal output = %q", got)
	}

	SetQuiet(true)
	if !IsQuiet() {
		t.Fatal("IsQuiet() = false after SetQuiet(true)")
	}
	got = capture(t, &os.Stdout, func() {
		PrintNormal("created %s\n", "1001")
		PrintlnNormal("parent", "Engineering Notes")
	})
	if got != "" {
		t.Errorf("quiet output = %q, want nothing", got)
	}
}

func TestNewLogger(t *testing.T) {
	reset(t)

	var buf bytes.Buffer
	enabled, verboseMode = false, false
	NewLogger(&buf).Debug("dropped", "page_id", "1001")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}

	SetVerbose(true)
	NewLogger(&buf).Debug("request", "method", "GET", "attempt", 2)
	got := buf.String()
	for _, want := range []string{"level=DEBUG", "msg=request", "method=GET", "attempt=2"} {
		if !strings.Contains(got, want) {
			t.Errorf("log output %q missing %q", got, want)
		}
	}
}
