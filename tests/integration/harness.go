// Package integration exercises the full HTTP stack in-process: routing,
// middleware, token auth and the projection services behind them. No network
// listener is opened; requests go straight through the gin engine.
package integration

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	reportapp "github.com/corpfin/backend/internal/application/report"
	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/corpfin/backend/internal/infrastructure/cache"
	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/corpfin/backend/internal/infrastructure/logger"
	"github.com/corpfin/backend/internal/infrastructure/rendering"
	"github.com/corpfin/backend/internal/interfaces/http/handler"
	"github.com/corpfin/backend/internal/interfaces/http/middleware"
	"github.com/corpfin/backend/internal/interfaces/http/router"
	"github.com/corpfin/backend/tests/testutil"
)

// TestSecret is long enough to satisfy production secret rules, so the same
// harness works for environment-sensitive cases.
const TestSecret = "integration-test-secret-0123456789abcdef"

var validatorOnce sync.Once

type serverConfig struct {
	authEnabled    bool
	rateLimit      int
	rateWindow     time.Duration
	authTokenLimit int
	maxBodySize    int64
	renderer       rendering.PDFRenderer
	cacheTTL       time.Duration
	maxYears       int
	solverRounds   int
}

// ServerOption customizes the wired test server.
type ServerOption func(*serverConfig)

// WithAuth turns on token enforcement with the shared test secret.
func WithAuth() ServerOption {
	return func(sc *serverConfig) { sc.authEnabled = true }
}

// WithRateLimit applies a global request limit per window.
func WithRateLimit(requests int, window time.Duration) ServerOption {
	return func(sc *serverConfig) {
		sc.rateLimit = requests
		sc.rateWindow = window
	}
}

// WithAuthTokenLimit overrides the per-window cap on token minting requests.
func WithAuthTokenLimit(requests int) ServerOption {
	return func(sc *serverConfig) { sc.authTokenLimit = requests }
}

// WithMaxBodySize caps the accepted request body.
func WithMaxBodySize(maxBytes int64) ServerOption {
	return func(sc *serverConfig) { sc.maxBodySize = maxBytes }
}

// WithRenderer wires a PDF renderer, enabling the report endpoint.
func WithRenderer(r rendering.PDFRenderer) ServerOption {
	return func(sc *serverConfig) { sc.renderer = r }
}

// WithMaxProjectionYears caps the accepted projection horizon.
func WithMaxProjectionYears(years int) ServerOption {
	return func(sc *serverConfig) { sc.maxYears = years }
}

// TestServer is a fully wired API stack backed by an in-memory result cache.
type TestServer struct {
	Engine  *gin.Engine
	Tokens  *auth.TokenService
	Cache   cache.ResultCache
	Reports *reportapp.ReportService
}

// NewTestServer builds the engine the way the server binary does: the same
// middleware order, the same route table, the same scope requirements.
func NewTestServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()

	sc := &serverConfig{
		authTokenLimit: 10,
		maxBodySize:    1 << 20,
		cacheTTL:       time.Minute,
		maxYears:       50,
	}
	for _, opt := range opts {
		opt(sc)
	}

	log := zap.NewNop()

	authCfg := config.AuthConfig{
		Enabled:         sc.authEnabled,
		Secret:          TestSecret,
		TokenExpiration: time.Hour,
		Issuer:          "corpfin-backend-test",
	}
	tokens := auth.NewTokenService(authCfg)

	resultCache, err := cache.NewResultCacheFactory(
		config.CacheConfig{Backend: "memory", TTL: sc.cacheTTL, MaxEntries: 256},
		config.RedisConfig{},
		cache.WithLogger(log),
	).CreateCache()
	require.NoError(t, err)
	t.Cleanup(func() { _ = resultCache.Close() })

	projections := financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		SolverIterations:   sc.solverRounds,
		MaxProjectionYears: sc.maxYears,
		Cache:              resultCache,
		CacheTTL:           sc.cacheTTL,
		Logger:             log,
	})

	reports := reportapp.NewReportService(reportapp.ReportServiceConfig{
		Projections: projections,
		Renderer:    sc.renderer,
		EngineName:  "stub",
		Logger:      log,
	})
	t.Cleanup(func() { _ = reports.Close() })

	projectionHandler := handler.NewProjectionHandler(projections)
	reportHandler := handler.NewReportHandler(reports)
	authHandler := handler.NewAuthHandler(tokens, authCfg)
	systemHandler := handler.NewSystemHandler()

	validatorOnce.Do(middleware.SetupValidator)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(sc.maxBodySize))
	if sc.rateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(sc.rateLimit, sc.rateWindow)))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if sc.authEnabled {
		r.Use(middleware.AuthMiddlewareWithConfig(middleware.AuthMiddlewareConfig{
			TokenService: tokens,
			SkipPaths: []string{
				"/api/v1/system/ping",
				"/api/v1/system/info",
				"/api/v1/auth/token",
			},
		}))
	} else {
		r.Use(middleware.OptionalAuthMiddleware(tokens))
	}

	scoped := func(scopes ...string) gin.HandlerFunc {
		if !sc.authEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequireAnyScope(scopes...)
	}

	modelRoutes := router.NewDomainGroup("model", "/model")
	modelRoutes.POST("/projections",
		scoped(auth.ScopeModelRun),
		projectionHandler.RunProjection)
	modelRoutes.POST("/projections/validate",
		scoped(auth.ScopeModelRun, auth.ScopeModelValidate),
		projectionHandler.ValidateProjection)
	modelRoutes.POST("/reports/projection",
		scoped(auth.ScopeModelRun, auth.ScopeReportsRender),
		reportHandler.RenderProjectionReport)

	authLimiter := middleware.NewRateLimiter(sc.authTokenLimit, time.Minute)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/token", middleware.AuthRateLimit(authLimiter), authHandler.IssueToken)
	authRoutes.GET("/token/info", authHandler.TokenInfo)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(modelRoutes).
		Register(authRoutes).
		Register(systemRoutes)
	r.Setup()

	return &TestServer{
		Engine:  engine,
		Tokens:  tokens,
		Cache:   resultCache,
		Reports: reports,
	}
}

// MintToken issues a token directly through the token service.
func (ts *TestServer) MintToken(t *testing.T, clientID string, scopes ...string) string {
	t.Helper()

	issued, err := ts.Tokens.Issue(clientID, scopes)
	require.NoError(t, err)
	return issued.Token
}

// Do executes a request against the engine. An empty token sends no
// Authorization header.
func (ts *TestServer) Do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	return testutil.PerformRequest(t, ts.Engine, method, path, body, headers)
}

// stubRenderer satisfies rendering.PDFRenderer without a browser. Rendered
// bytes carry a PDF magic prefix so content sniffing behaves.
type stubRenderer struct {
	mu      sync.Mutex
	renders int
	fail    bool
	closed  bool
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{}
}

func (r *stubRenderer) Render(_ context.Context, req *rendering.RenderRequest) (*rendering.RenderResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return nil, &rendering.RenderError{Code: "RENDER_FAILED", Message: "stub renderer failure"}
	}
	r.renders++
	return &rendering.RenderResult{
		PDFData:        []byte("%PDF-1.4\n" + req.Title),
		PageCount:      1,
		RenderDuration: time.Millisecond,
	}, nil
}

func (r *stubRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *stubRenderer) renderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}
