package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corpfin/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newScopeTestRouter(tokenService *auth.TokenService, guard gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(tokenService))
	router.GET("/guarded", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doScopeRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireScope_Granted(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeModelRun})

	router := newScopeTestRouter(tokenService, RequireScope(auth.ScopeModelRun))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireScope_Denied(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeModelValidate})

	router := newScopeTestRouter(tokenService, RequireScope(auth.ScopeReportsRender))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_FORBIDDEN")
}

func TestRequireScope_NoClaims(t *testing.T) {
	router := gin.New()
	router.GET("/guarded", RequireScope(auth.ScopeModelRun), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyScope_OneOfMany(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeModelValidate})

	router := newScopeTestRouter(tokenService, RequireAnyScope(auth.ScopeModelRun, auth.ScopeModelValidate))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyScope_NoneMatch(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeReportsRender})

	router := newScopeTestRouter(tokenService, RequireAnyScope(auth.ScopeModelRun, auth.ScopeModelValidate))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAllScopes_AllPresent(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeModelRun, auth.ScopeReportsRender})

	router := newScopeTestRouter(tokenService, RequireAllScopes(auth.ScopeModelRun, auth.ScopeReportsRender))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAllScopes_OneMissing(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{auth.ScopeModelRun})

	router := newScopeTestRouter(tokenService, RequireAllScopes(auth.ScopeModelRun, auth.ScopeReportsRender))
	rec := doScopeRequest(router, issued.Token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyScope_OnDenied(t *testing.T) {
	tokenService := newTestTokenService()
	issued := newTestToken(t, tokenService, []string{})

	deniedCalled := false
	var deniedScopes []string
	cfg := ScopeConfig{
		OnDenied: func(c *gin.Context, requiredScopes []string) {
			deniedCalled = true
			deniedScopes = requiredScopes
			c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"custom": "denied"})
		},
	}

	router := newScopeTestRouter(tokenService, RequireAnyScopeWithConfig(cfg, auth.ScopeModelRun))
	rec := doScopeRequest(router, issued.Token)

	assert.True(t, deniedCalled)
	assert.Equal(t, []string{auth.ScopeModelRun}, deniedScopes)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHasScopeHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(AuthClaimsKey, &auth.Claims{
		ClientID: "analyst-cli",
		Scopes:   []string{auth.ScopeModelRun, auth.ScopeModelValidate},
	})

	assert.True(t, HasScope(c, auth.ScopeModelRun))
	assert.False(t, HasScope(c, auth.ScopeReportsRender))
	assert.True(t, HasAnyScope(c, auth.ScopeReportsRender, auth.ScopeModelValidate))
	assert.False(t, HasAnyScope(c, auth.ScopeReportsRender))
	assert.True(t, HasAllScopes(c, auth.ScopeModelRun, auth.ScopeModelValidate))
	assert.False(t, HasAllScopes(c, auth.ScopeModelRun, auth.ScopeReportsRender))
}

func TestHasScopeHelpers_NoClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.False(t, HasScope(c, auth.ScopeModelRun))
	assert.False(t, HasAnyScope(c, auth.ScopeModelRun))
	assert.False(t, HasAllScopes(c, auth.ScopeModelRun))
}
