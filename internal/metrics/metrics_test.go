package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ImplementsInterface はCollectorがインターフェースを満たすことを検証する。
func TestNewCollector_ImplementsInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodGet, "/api/asset", 200, 5*time.Millisecond)
	c.RecordRateLimitRejection()
	c.RecordAssetCreated()
	c.RecordSessionsCleaned(3)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, metric := range []string{
		"inventory360_http_requests_total",
		"inventory360_rate_limit_rejections_total",
		"inventory360_assets_created_total",
		"inventory360_sessions_cleaned_total",
	} {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response should contain %s metric", metric)
		}
	}

	if !strings.Contains(bodyStr, `inventory360_sessions_cleaned_total 3`) {
		t.Error("sessions cleaned counter should be 3")
	}
}
