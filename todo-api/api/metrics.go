package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName             = "todo-api"
	requestSpanName        = "todo.request"
	requestEventName       = "todo.request.metrics"
	requestEventDomain     = "todo-api"
	observabilityEventName = "observability.event"
	metricsContextKey      = "todo.metrics"
)

type requestMetrics struct {
	logger          *log.Logger
	span            trace.Span
	start           time.Time
	method          string
	route           string
	userID          string
	authDuration    time.Duration
	storageDuration time.Duration
	tasksReturned   int
	errorStage      string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, method, route string) (*requestMetrics, context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, requestSpanName, trace.WithSpanKind(trace.SpanKindServer))
	return &requestMetrics{
		logger:        logger,
		span:          span,
		start:         time.Now(),
		method:        method,
		route:         route,
		tasksReturned: -1,
	}, ctx
}

func (m *requestMetrics) ObserveAuth(d time.Duration) {
	if m == nil || d <= 0 {
		return
	}
	m.authDuration = d
}

// ObserveStorage accumulates time spent in storage calls.
func (m *requestMetrics) ObserveStorage(d time.Duration) {
	if m == nil || d <= 0 {
		return
	}
	m.storageDuration += d
}

func (m *requestMetrics) SetUser(userID string) {
	if m == nil {
		return
	}
	m.userID = userID
}

func (m *requestMetrics) SetTasksReturned(n int) {
	if m == nil {
		return
	}
	m.tasksReturned = max(n, 0)
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if m == nil || stage == "" {
		return
	}
	m.errorStage = stage
}

// Log ends the span and emits one observability event, both as a span event
// and as a log entry.
func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := map[string]any{
		"http.method":           m.method,
		"http.route":            m.route,
		"http.status_code":      status,
		"todo.request.total_ms": durationToMillis(time.Since(m.start)),
	}
	if m.userID != "" {
		attrs["enduser.id"] = m.userID
	}
	if m.authDuration > 0 {
		attrs["todo.request.auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.storageDuration > 0 {
		attrs["todo.request.storage_ms"] = durationToMillis(m.storageDuration)
	}
	if m.tasksReturned >= 0 {
		attrs["todo.request.tasks_returned"] = m.tasksReturned
	}
	if m.errorStage != "" {
		attrs["todo.request.error_stage"] = m.errorStage
	}
	if err != nil {
		attrs["error.message"] = err.Error()
	}

	severityText, severityNumber := severityForStatus(status, err)
	kvs := toAttributes(attrs)

	if m.span != nil {
		m.span.SetAttributes(kvs...)
		eventAttrs := append([]attribute.KeyValue{
			attribute.String("event.name", requestEventName),
			attribute.String("event.domain", requestEventDomain),
			attribute.String("severity_text", severityText),
			attribute.Int("severity_number", severityNumber),
		}, kvs...)
		m.span.AddEvent(observabilityEventName, trace.WithAttributes(eventAttrs...))
		if severityNumber >= severityError {
			desc := http.StatusText(status)
			if err != nil {
				desc = err.Error()
			}
			m.span.SetStatus(codes.Error, desc)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"event.name":      requestEventName,
		"event.domain":    requestEventDomain,
		"attributes":      attrs,
		"severity_text":   severityText,
		"severity_number": severityNumber,
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
			fields["span_id"] = sc.SpanID().String()
		}
	}
	entry := m.logger.WithFields(fields)
	switch severityNumber {
	case severityError:
		entry.Error(observabilityEventName)
	case severityWarn:
		entry.Warn(observabilityEventName)
	default:
		entry.Info(observabilityEventName)
	}
}

const (
	severityInfo  = 9
	severityWarn  = 13
	severityError = 17
)

func severityForStatus(status int, err error) (string, int) {
	switch {
	case status >= http.StatusInternalServerError:
		return "ERROR", severityError
	case status >= http.StatusBadRequest:
		return "WARN", severityWarn
	case status == 0 && err != nil:
		return "ERROR", severityError
	}
	return "INFO", severityInfo
}

func toAttributes(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case int:
			out = append(out, attribute.Int(k, val))
		case float64:
			out = append(out, attribute.Float64(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		}
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

// RequestMetrics opens a span per request and logs an observability event
// when the handler returns.
func RequestMetrics(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			metrics, ctx := newRequestMetrics(req.Context(), logger, req.Method, c.Path())
			c.SetRequest(req.WithContext(ctx))
			c.Set(metricsContextKey, metrics)

			err := next(c)

			status := c.Response().Status
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			metrics.Log(status, err)
			return err
		}
	}
}

func metricsFrom(c echo.Context) *requestMetrics {
	m, _ := c.Get(metricsContextKey).(*requestMetrics)
	return m
}
