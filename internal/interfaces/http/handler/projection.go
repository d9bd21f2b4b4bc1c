package handler

import (
	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/interfaces/http/dto"
	"github.com/corpfin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ProjectionHandler handles projection model API endpoints
type ProjectionHandler struct {
	BaseHandler
	projections *financeapp.ProjectionService
}

// NewProjectionHandler creates a new ProjectionHandler
func NewProjectionHandler(projections *financeapp.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{
		projections: projections,
	}
}

// RunProjection godoc
// @Summary      Run a three-statement projection
// @Description  Build a linked income statement, balance sheet and cash flow projection from an audited base year and an assumption set. The projection horizon is the length of the revenue growth vector.
// @Tags         model
// @Accept       json
// @Produce      json
// @Param        request body financeapp.RunProjectionRequest true "Base year and assumptions"
// @Success      200 {object} dto.Response{data=financeapp.ProjectionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /model/projections [post]
func (h *ProjectionHandler) RunProjection(c *gin.Context) {
	var req financeapp.RunProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	result, err := h.projections.Run(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	meta := &dto.Meta{
		RequestID: getRequestID(c),
		Cache:     dto.CacheMetaMiss,
	}
	if result.CacheHit {
		meta.Cache = dto.CacheMetaHit
	}

	h.SuccessWithMeta(c, result, meta)
}

// ValidateProjection godoc
// @Summary      Validate projection inputs
// @Description  Check a base year and assumption set without running the model. Returns the projection horizon the inputs imply.
// @Tags         model
// @Accept       json
// @Produce      json
// @Param        request body financeapp.RunProjectionRequest true "Base year and assumptions"
// @Success      200 {object} dto.Response{data=financeapp.ValidationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /model/projections/validate [post]
func (h *ProjectionHandler) ValidateProjection(c *gin.Context) {
	var req financeapp.RunProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	result, err := h.projections.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
