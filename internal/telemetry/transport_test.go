package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWrapTransportDisabledReturnsInner(t *testing.T) {
	t.Setenv("SCRIBE_OTEL_ENABLED", "")
	inner := &http.Transport{}
	if got := WrapTransport(inner, "confluence"); got != inner {
		t.Errorf("WrapTransport() = %T, want the inner transport unchanged", got)
	}
	if got := WrapTransport(nil, "jira"); got != http.DefaultTransport {
		t.Errorf("WrapTransport(nil) = %T, want http.DefaultTransport", got)
	}
}

func TestInstrumentedTransportPassesThrough(t *testing.T) {
	t.Setenv("SCRIBE_OTEL_ENABLED", "true")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Transport: WrapTransport(nil, "confluence")}
	if _, ok := client.Transport.(*InstrumentedTransport); !ok {
		t.Fatalf("Transport = %T, want *InstrumentedTransport", client.Transport)
	}

	for path, want := range map[string]int{"/": http.StatusOK, "/missing": http.StatusNotFound} {
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, want)
		}
	}
}
