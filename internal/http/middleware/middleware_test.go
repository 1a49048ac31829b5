package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/bmu-faultfinder/internal/observability"
	"github.com/yungbote/bmu-faultfinder/internal/platform/ctxutil"
	"github.com/yungbote/bmu-faultfinder/internal/platform/logger"
)

func TestRequestIDsEchoAndGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDs())

	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-123" {
		t.Fatalf("request id not propagated: %+v", seen)
	}
	if seen.TraceID == "" {
		t.Fatalf("trace id should be generated")
	}
	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id header: got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); got != seen.TraceID {
		t.Fatalf("trace id header: got=%q want=%q", got, seen.TraceID)
	}
}

func TestRequestIDsRejectUnsafeClientIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDs())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "bad id\twith spaces")
	req.Header.Set(headerTraceID, strings.Repeat("a", maxClientIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got == "" || got == "bad id\twith spaces" {
		t.Fatalf("unsafe request id should be replaced, got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); len(got) != 32 {
		t.Fatalf("oversized trace id should be replaced by a generated one, got=%q", got)
	}
}

func TestRequestIDsTagActiveSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}, RequestIDs())

	var traceID string
	r.GET("/api/models", func(c *gin.Context) {
		traceID = ctxutil.GetTraceData(c.Request.Context()).TraceID
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.Header.Set(headerRequestID, "req-77")
	req.Header.Set(headerTraceID, "client-supplied")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("want one span, got %d", len(spans))
	}
	if want := spans[0].SpanContext().TraceID().String(); traceID != want {
		t.Fatalf("span trace id should win: got=%q want=%q", traceID, want)
	}
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["bmu.request_id"] != "req-77" {
		t.Fatalf("request id not on span: %v", attrs)
	}
	if attrs["bmu.route"] != "/api/models" {
		t.Fatalf("route not on span: %v", attrs)
	}
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(RequestIDs(), RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/missing/7"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
	fields := entries[1].ContextMap()
	if fields["path"] != "/missing/:id" {
		t.Fatalf("route template not logged: %v", fields["path"])
	}
	if _, ok := fields["request_id"]; !ok {
		t.Fatalf("request_id missing from log fields: %v", fields)
	}
}

func TestMetricsSkipsScrapeEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/api/models", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/models", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	n, err := testutil.GatherAndCount(m.Registry(), "bmu_api_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("want one labelled series, got %d", n)
	}
}
