package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("package_category", "web-development"),
		attribute.String("user_id", "456"),
		attribute.String("operation", "record_payment"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "package_category" && attrs[1].Key != "package_category" {
		t.Fatalf("expected package_category to be retained")
	}
	if attrs[0].Key != "operation" && attrs[1].Key != "operation" {
		t.Fatalf("expected operation to be retained")
	}
}

func TestRecordersAreNilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordAssignmentsCreated(ctx, "web", 1)
	m.RecordMilestoneUpdate(ctx, "completed", "in_progress")
	m.RecordPayment(ctx, "web", 10)
	m.RecordAddOnAdded(ctx, "seo")
	m.RecordVersionConflict(ctx, "add_addon")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "quotation-test"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordPayment(context.Background(), "web", 82.5)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/assignments/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignments/a-1", nil))

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/assignments/:id", "GET", "404"))
	if got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "quotation_http_requests_total") {
		t.Fatalf("expected exposition to include request counter")
	}
}
