package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/infrastructure/cache"
	"github.com/corpfin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectionRequestBody is a profitable three-year request whose opening
// balance sheet ties (assets 920 = liabilities 355 + equity 565).
const projectionRequestBody = `{
  "base_year": {
    "revenue": 1000,
    "receivables": 120,
    "inventory": 100,
    "payables": 55,
    "net_ppe": 500,
    "total_debt": 300,
    "shareholders_equity": 565,
    "cash": 200
  },
  "assumptions": {
    "growth_rates": [0.05, 0.05, 0.05],
    "cogs_pct": 0.60,
    "sga_pct": 0.10,
    "rd_pct": 0.05,
    "depreciation_pct": 0.10,
    "interest_rate": 0.05,
    "tax_rate": 0.25,
    "dso_days": 45,
    "dio_days": 60,
    "dpo_days": 30,
    "capex_pct": 0.07,
    "debt_repayment_pct": 0.10,
    "dividend_payout_pct": 0.30,
    "minimum_cash": 50
  }
}`

// projectionBody returns the fixture body with an optional mutation applied
func projectionBody(t *testing.T, mutate func(map[string]any)) *bytes.Reader {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(projectionRequestBody), &m))
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func newProjectionRouter(svc *financeapp.ProjectionService) *gin.Engine {
	h := NewProjectionHandler(svc)
	r := gin.New()
	r.POST("/model/projections", h.RunProjection)
	r.POST("/model/projections/validate", h.ValidateProjection)
	return r
}

func TestProjectionHandlerRunProjection(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections", projectionBody(t, nil))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, dto.CacheMetaMiss, resp.Meta.Cache)

	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["run_id"])
	assert.Len(t, data["income_statements"], 3)
	assert.Len(t, data["balance_sheets"], 3)
	assert.Len(t, data["cash_flow_statements"], 3)
	assert.NotEmpty(t, data["methodology"])
}

func TestProjectionHandlerRunProjectionCacheHit(t *testing.T) {
	resultCache := cache.NewInMemoryResultCache(time.Minute, 16)
	defer resultCache.Close()

	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		Cache:    resultCache,
		CacheTTL: time.Minute,
	}))

	for i, wantCache := range []string{dto.CacheMetaMiss, dto.CacheMetaHit} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/model/projections", projectionBody(t, nil))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "request %d", i)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Meta)
		assert.Equal(t, wantCache, resp.Meta.Cache, "request %d", i)
	}
}

func TestProjectionHandlerRunProjectionMalformedJSON(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestProjectionHandlerRunProjectionInvalidRate(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections", projectionBody(t, func(m map[string]any) {
		m["assumptions"].(map[string]any)["tax_rate"] = 1.5
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "tax_rate", resp.Error.Details[0].Field)
}

func TestProjectionHandlerRunProjectionImpossibleCostStructure(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections", projectionBody(t, func(m map[string]any) {
		assumptions := m["assumptions"].(map[string]any)
		assumptions["cogs_pct"] = 0.70
		assumptions["sga_pct"] = 0.30
		assumptions["rd_pct"] = 0.20
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeFinancialImpossibility, resp.Error.Code)
}

func TestProjectionHandlerRunProjectionHorizonCap(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		MaxProjectionYears: 2,
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections", projectionBody(t, nil))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
}

func TestProjectionHandlerValidateProjection(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections/validate", projectionBody(t, nil))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(3), data["years"])
}

func TestProjectionHandlerValidateProjectionRejectsInvalid(t *testing.T) {
	router := newProjectionRouter(financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/model/projections/validate", projectionBody(t, func(m map[string]any) {
		m["base_year"].(map[string]any)["cash"] = -10
	}))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "cash", resp.Error.Details[0].Field)
}
