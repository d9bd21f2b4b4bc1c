package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newMetricsTestRouter wires the HTTP metrics middleware over a
// projection-shaped API and returns a manual reader for collecting what was
// recorded.
func newMetricsTestRouter(t *testing.T, mw ...gin.HandlerFunc) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})

	router := gin.New()
	router.Use(mw...)
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.POST("/api/v1/model/projections", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	router.POST("/api/v1/model/projections/validate", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false})
	})
	return router, reader
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func hasAttr(set attribute.Set, kv attribute.KeyValue) bool {
	v, ok := set.Value(kv.Key)
	return ok && v == kv.Value
}

func TestHTTPMetricsWithMeter_RecordsRequestTotal(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	body := strings.NewReader(`{"base_year":{},"assumptions":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/model/projections", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	m := collectMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m, "request counter should be recorded")

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	dp := sum.DataPoints[0]
	assert.Equal(t, int64(1), dp.Value)
	assert.True(t, hasAttr(dp.Attributes, attribute.String("http.method", "POST")))
	assert.True(t, hasAttr(dp.Attributes, attribute.String("http.route", "/api/v1/model/projections")))
	assert.True(t, hasAttr(dp.Attributes, attribute.Int("http.status_code", http.StatusOK)))
}

func TestHTTPMetricsWithMeter_StatusCodePerRoute(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/model/projections/validate", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	m := collectMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.True(t, hasAttr(sum.DataPoints[0].Attributes,
		attribute.Int("http.status_code", http.StatusUnprocessableEntity)))
	assert.True(t, hasAttr(sum.DataPoints[0].Attributes,
		attribute.String("http.route", "/api/v1/model/projections/validate")))
}

func TestHTTPMetricsWithMeter_ClientIDAttribute(t *testing.T) {
	// Simulate the auth middleware having validated a token.
	claimsMiddleware := func(c *gin.Context) {
		c.Set(AuthClientIDKey, "fpa-batch-runner")
		c.Next()
	}
	router, reader := newMetricsTestRouter(t, claimsMiddleware)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/model/projections", nil))

	m := collectMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.True(t, hasAttr(sum.DataPoints[0].Attributes,
		attribute.String("client_id", "fpa-batch-runner")))
}

func TestHTTPMetricsWithMeter_DurationHistogram(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/model/projections", nil))

	m := collectMetric(t, reader, "http_server_request_duration_seconds")
	require.NotNil(t, m, "duration histogram should be recorded")

	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)

	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(1), dp.Count)
	// Duration attrs carry only method and route, never status or client,
	// to keep histogram cardinality down.
	assert.True(t, hasAttr(dp.Attributes, attribute.String("http.route", "/api/v1/model/projections")))
	_, hasStatus := dp.Attributes.Value("http.status_code")
	assert.False(t, hasStatus)
}

func TestHTTPMetricsWithMeter_BodySizes(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	body := strings.NewReader(`{"base_year":{"revenue":"1000.00"},"assumptions":{"growth_rates":["0.05"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/model/projections", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	reqSize := collectMetric(t, reader, "http_server_request_size_bytes")
	require.NotNil(t, reqSize)
	reqHist := reqSize.Data.(metricdata.Histogram[float64])
	require.Len(t, reqHist.DataPoints, 1)
	assert.Greater(t, reqHist.DataPoints[0].Sum, float64(0))

	respSize := collectMetric(t, reader, "http_server_response_size_bytes")
	require.NotNil(t, respSize)
	respHist := respSize.Data.(metricdata.Histogram[float64])
	require.Len(t, respHist.DataPoints, 1)
	assert.Greater(t, respHist.DataPoints[0].Sum, float64(0))
}

func TestHTTPMetricsWithMeter_UnmatchedRoute(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	m := collectMetric(t, reader, "http_server_request_total")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	// Unmatched paths collapse to a single label so scans cannot explode
	// metric cardinality.
	assert.True(t, hasAttr(sum.DataPoints[0].Attributes, attribute.String("http.route", "unknown")))
}

func TestHTTPMetricsWithMeter_ActiveRequestsSettles(t *testing.T) {
	router, reader := newMetricsTestRouter(t)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/model/projections", nil))
	}

	m := collectMetric(t, reader, "http_server_active_requests")
	require.NotNil(t, m)

	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value, "every increment should be matched by a decrement")
}

func TestHTTPMetricsWithMeter_Disabled(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), false))
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Nil(t, collectMetric(t, reader, "http_server_request_total"))
}

func TestHTTPMetrics_DisabledConfig(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
