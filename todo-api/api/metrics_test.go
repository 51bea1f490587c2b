package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/OjusAnilNaik/To-do-List/todo-api/storage"
)

func TestRequestMetricsLogProducesObservabilityEvent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetFormatter(&log.JSONFormatter{})

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newRequestMetrics(context.Background(), logger, http.MethodGet, "/api/tasks")
	metrics.start = metrics.start.Add(-50 * time.Millisecond)
	metrics.SetUser("user-1")
	metrics.ObserveAuth(10 * time.Millisecond)
	metrics.ObserveStorage(15 * time.Millisecond)
	metrics.ObserveStorage(5 * time.Millisecond)
	metrics.SetTasksReturned(3)

	metrics.Log(http.StatusOK, nil)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := waitForLogEntry(t, hook, time.Second)
	if entry.Message != observabilityEventName {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if entry.Level != log.InfoLevel {
		t.Fatalf("unexpected level: %v", entry.Level)
	}
	if got := entry.Data["event.name"]; got != requestEventName {
		t.Fatalf("unexpected event name: %v", got)
	}
	attrs, ok := entry.Data["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("attributes not logged as map: %#v", entry.Data["attributes"])
	}
	if attrs["http.route"] != "/api/tasks" {
		t.Fatalf("unexpected route attribute: %#v", attrs["http.route"])
	}
	if attrs["enduser.id"] != "user-1" {
		t.Fatalf("unexpected user attribute: %#v", attrs["enduser.id"])
	}
	if attrs["todo.request.tasks_returned"] != 3 {
		t.Fatalf("unexpected tasks returned: %#v", attrs["todo.request.tasks_returned"])
	}
	if attrs["todo.request.storage_ms"] != 20.0 {
		t.Fatalf("expected storage time to accumulate, got %#v", attrs["todo.request.storage_ms"])
	}
	if _, ok := attrs["todo.request.error_stage"]; ok {
		t.Fatalf("did not expect error stage")
	}
	if entry.Data["severity_text"] != "INFO" || entry.Data["severity_number"] != severityInfo {
		t.Fatalf("unexpected severity: %v %v", entry.Data["severity_text"], entry.Data["severity_number"])
	}
	if entry.Data["trace_id"] == nil || entry.Data["span_id"] == nil {
		t.Fatalf("expected trace correlation fields")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != requestSpanName {
		t.Fatalf("unexpected span name: %s", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Fatalf("unexpected span status: %v", span.Status.Code)
	}
	if len(span.Events) != 1 || span.Events[0].Name != observabilityEventName {
		t.Fatalf("expected one observability event, got %+v", span.Events)
	}
	eventAttrs := attributesToMap(span.Events[0].Attributes)
	if eventAttrs["event.domain"] != requestEventDomain {
		t.Fatalf("unexpected event domain: %v", eventAttrs["event.domain"])
	}
	if eventAttrs["http.status_code"] != int64(http.StatusOK) {
		t.Fatalf("unexpected status attribute: %#v", eventAttrs["http.status_code"])
	}
}

func TestRequestMetricsErrorSeverity(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newRequestMetrics(context.Background(), logger, http.MethodPost, "/api/tasks")
	metrics.SetErrorStage("storage")
	metrics.Log(http.StatusInternalServerError, errors.New("boom"))

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}
	entry := waitForLogEntry(t, hook, time.Second)
	if entry.Level != log.ErrorLevel {
		t.Fatalf("expected error level, got %v", entry.Level)
	}
	attrs := entry.Data["attributes"].(map[string]any)
	if attrs["todo.request.error_stage"] != "storage" || attrs["error.message"] != "boom" {
		t.Fatalf("unexpected attributes: %#v", attrs)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error || spans[0].Status.Description != "boom" {
		t.Fatalf("expected error span, got %+v", spans)
	}
}

func TestSeverityForStatus(t *testing.T) {
	cases := []struct {
		status int
		err    error
		text   string
		number int
	}{
		{http.StatusOK, nil, "INFO", severityInfo},
		{http.StatusCreated, nil, "INFO", severityInfo},
		{http.StatusNotFound, nil, "WARN", severityWarn},
		{http.StatusConflict, nil, "WARN", severityWarn},
		{http.StatusBadGateway, nil, "ERROR", severityError},
		{0, errors.New("x"), "ERROR", severityError},
	}
	for _, tc := range cases {
		text, number := severityForStatus(tc.status, tc.err)
		if text != tc.text || number != tc.number {
			t.Fatalf("status %d: expected %s/%d, got %s/%d", tc.status, tc.text, tc.number, text, number)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *requestMetrics
	m.ObserveAuth(time.Second)
	m.ObserveStorage(time.Second)
	m.SetUser("u")
	m.SetTasksReturned(1)
	m.SetErrorStage("x")
	m.Log(http.StatusOK, nil)
}

func TestRequestMetricsMiddlewareRecordsRoute(t *testing.T) {
	logger, hook := test.NewNullLogger()
	_, exporter, restore := setupTestTracer(t)
	defer restore()

	e := echo.New()
	Register(e, storage.NewMemory(), SingleUser("u"), nil, nil, logger)

	req := httptest.NewRequest(http.MethodPost, "/toggle/9", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	entry := waitForLogEntry(t, hook, time.Second)
	if entry.Level != log.WarnLevel {
		t.Fatalf("expected warn level for 404, got %v", entry.Level)
	}
	attrs := entry.Data["attributes"].(map[string]any)
	if attrs["http.route"] != "/toggle/:id" {
		t.Fatalf("unexpected route: %#v", attrs["http.route"])
	}
	if attrs["http.status_code"] != http.StatusNotFound {
		t.Fatalf("unexpected status: %#v", attrs["http.status_code"])
	}
	if attrs["todo.request.error_stage"] != "not_found" {
		t.Fatalf("unexpected error stage: %#v", attrs["todo.request.error_stage"])
	}
	if attrs["enduser.id"] != "u" {
		t.Fatalf("unexpected user: %#v", attrs["enduser.id"])
	}
	if len(exporter.GetSpans()) != 1 {
		t.Fatalf("expected one span, got %d", len(exporter.GetSpans()))
	}
}

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	}
	return tp, exporter, cleanup
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func waitForLogEntry(t *testing.T, hook *test.Hook, timeout time.Duration) *log.Entry {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if entry := hook.LastEntry(); entry != nil {
			return entry
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected log entry within %v", timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
