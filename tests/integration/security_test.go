package integration

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpfin/backend/internal/interfaces/http/dto"
	"github.com/corpfin/backend/tests/testutil"
)

const pingPath = "/api/v1/system/ping"

func TestSecurityHeaders(t *testing.T) {
	ts := NewTestServer(t)

	w := ts.Do(t, http.MethodGet, pingPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	headers := w.Header()
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", headers.Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.NotEmpty(t, headers.Get("Content-Security-Policy"))
	assert.NotEmpty(t, headers.Get("Permissions-Policy"))
}

func TestRequestIDGenerated(t *testing.T) {
	ts := NewTestServer(t)

	w := ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), "")
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Len(t, id, 32, "generated IDs are 128 random bits in hex")

	meta := testutil.AssertSuccessResponse(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, id, meta["request_id"])
}

func TestRequestIDEchoed(t *testing.T) {
	ts := NewTestServer(t)

	w := testutil.PerformRequest(t, ts.Engine, http.MethodPost, projectionsPath,
		testutil.ProjectionRequest(), map[string]string{"X-Request-ID": "trace-4711"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "trace-4711", w.Header().Get("X-Request-ID"))
	meta := testutil.AssertSuccessResponse(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, "trace-4711", meta["request_id"])
}

func TestRequestIDsAreUniquePerRequest(t *testing.T) {
	ts := NewTestServer(t)

	first := ts.Do(t, http.MethodGet, pingPath, nil, "").Header().Get("X-Request-ID")
	second := ts.Do(t, http.MethodGet, pingPath, nil, "").Header().Get("X-Request-ID")
	require.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestBodyLimitRejectsOversizedPayload(t *testing.T) {
	ts := NewTestServer(t, WithMaxBodySize(256))

	oversized := `{"filler":"` + strings.Repeat("x", 512) + `"}`
	w := ts.Do(t, http.MethodPost, projectionsPath, oversized, "")
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	testutil.AssertErrorResponse(t, w, dto.ErrCodeRequestTooLarge)
}

func TestBodyLimitAllowsNormalPayload(t *testing.T) {
	ts := NewTestServer(t, WithMaxBodySize(1<<20))

	w := ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitEnforced(t *testing.T) {
	ts := NewTestServer(t, WithRateLimit(2, time.Minute))

	w := ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	testutil.AssertErrorResponse(t, w, dto.ErrCodeRateLimited)
}

func TestAuthTokenRateLimit(t *testing.T) {
	ts := NewTestServer(t, WithAuth(), WithAuthTokenLimit(2))
	credentials := map[string]interface{}{
		"client_id":     "limited-client",
		"client_secret": TestSecret,
	}

	require.Equal(t, http.StatusOK, ts.Do(t, http.MethodPost, tokenPath, credentials, "").Code)
	require.Equal(t, http.StatusOK, ts.Do(t, http.MethodPost, tokenPath, credentials, "").Code)

	third := ts.Do(t, http.MethodPost, tokenPath, credentials, "")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	testutil.AssertErrorResponse(t, third, dto.ErrCodeRateLimited)
}

func TestAuthTokenLimitDoesNotThrottleModelRoutes(t *testing.T) {
	ts := NewTestServer(t, WithAuth(), WithAuthTokenLimit(1))
	credentials := map[string]interface{}{
		"client_id":     "solo-client",
		"client_secret": TestSecret,
	}

	require.Equal(t, http.StatusOK, ts.Do(t, http.MethodPost, tokenPath, credentials, "").Code)
	exhausted := ts.Do(t, http.MethodPost, tokenPath, credentials, "")
	require.Equal(t, http.StatusTooManyRequests, exhausted.Code)

	// Exhausting the token limiter must not throttle the model routes.
	token := ts.MintToken(t, "solo-client", "model:run")
	run := ts.Do(t, http.MethodPost, projectionsPath, testutil.ProjectionRequest(), token)
	assert.Equal(t, http.StatusOK, run.Code)
}

func TestCORSPreflightWithoutConfiguredOrigins(t *testing.T) {
	ts := NewTestServer(t)

	w := testutil.PerformRequest(t, ts.Engine, http.MethodOptions, projectionsPath, nil, map[string]string{
		"Origin":                        "https://reports.example.com",
		"Access-Control-Request-Method": "POST",
	})

	// Preflights always get 204, but no origin is allowed until one is
	// configured.
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCrossOriginRequestGetsNoCORSHeaders(t *testing.T) {
	ts := NewTestServer(t)

	w := testutil.PerformRequest(t, ts.Engine, http.MethodGet, pingPath, nil, map[string]string{
		"Origin": "https://reports.example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorResponsesDoNotLeakInternals(t *testing.T) {
	stub := newStubRenderer()
	ts := NewTestServer(t, WithRenderer(stub))
	stub.fail = true

	w := ts.Do(t, http.MethodPost, reportPath, renderRequest(nil), "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := w.Body.String()
	assert.NotContains(t, body, "goroutine")
	assert.NotContains(t, body, ".go:")
}
