package handler

import (
	"errors"
	"net/http"
	"strconv"

	reportapp "github.com/corpfin/backend/internal/application/report"
	"github.com/corpfin/backend/internal/infrastructure/rendering"
	"github.com/corpfin/backend/internal/interfaces/http/dto"
	"github.com/corpfin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles report rendering API endpoints
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
	}
}

// RenderProjectionReport godoc
// @Summary      Render a projection report
// @Description  Run a projection and render it as a formatted document. PDF output streams the file inline; HTML output returns the rendered page. Identical model inputs share the projection result cache with the JSON endpoint.
// @Tags         model
// @Accept       json
// @Produce      application/pdf
// @Produce      html
// @Param        request body reportapp.RenderProjectionRequest true "Base year, assumptions and render options"
// @Success      200 {file} binary "Rendered report"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /model/reports/projection [post]
func (h *ReportHandler) RenderProjectionReport(c *gin.Context) {
	var req reportapp.RenderProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BindError(c, err)
		return
	}

	rendered, err := h.reports.RenderProjection(c.Request.Context(), req)
	if err != nil {
		var renderErr *rendering.RenderError
		if errors.As(err, &renderErr) {
			h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, renderErr.Message)
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+rendered.Filename+"\"")
	c.Header("X-Run-ID", rendered.RunID)
	if rendered.PageCount > 0 {
		c.Header("X-Page-Count", strconv.Itoa(rendered.PageCount))
	}

	c.Data(http.StatusOK, rendered.ContentType, rendered.Data)
}
