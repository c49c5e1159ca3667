package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const httpScopeName = "github.com/scribe-docs/scribe/http"

// InstrumentedTransport wraps an http.RoundTripper with OTel tracing and
// metrics. Every attempt, retries included, gets a span and is counted in
// scribe.http.* metrics.
type InstrumentedTransport struct {
	inner   http.RoundTripper
	service string
	tracer  trace.Tracer
	reqs    metric.Int64Counter
	dur     metric.Float64Histogram
	errs    metric.Int64Counter
}

// WrapTransport returns rt decorated with OTel instrumentation. service names
// the remote system ("confluence", "jira"). When telemetry is disabled rt is
// returned as-is.
func WrapTransport(rt http.RoundTripper, service string) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if !Enabled() {
		return rt
	}
	m := Meter(httpScopeName)
	reqs, _ := m.Int64Counter("scribe.http.requests",
		metric.WithDescription("HTTP attempts sent to remote services"),
	)
	dur, _ := m.Float64Histogram("scribe.http.request.duration",
		metric.WithDescription("HTTP attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("scribe.http.errors",
		metric.WithDescription("HTTP attempts that failed or returned a non-2xx status"),
	)
	return &InstrumentedTransport{
		inner:   rt,
		service: service,
		tracer:  Tracer(httpScopeName),
		reqs:    reqs,
		dur:     dur,
		errs:    errs,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attrs := []attribute.KeyValue{
		attribute.String("scribe.service", t.service),
		attribute.String("http.request.method", req.Method),
	}
	ctx, span := t.tracer.Start(req.Context(), t.service+" "+req.Method,
		trace.WithAttributes(append(attrs, attribute.String("url.path", req.URL.Path))...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()
	t.reqs.Add(ctx, 1, metric.WithAttributes(attrs...))

	start := time.Now()
	resp, err := t.inner.RoundTrip(req.WithContext(ctx))
	t.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
		t.errs.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))...))
	}
	return resp, nil
}

// RetryCounter returns the counter incremented each time a request is
// retried after a transient failure.
func RetryCounter() metric.Int64Counter {
	c, _ := Meter(httpScopeName).Int64Counter("scribe.http.retries",
		metric.WithDescription("HTTP requests retried after a transient failure"),
	)
	return c
}
