package report

import (
	"context"
	"fmt"
	"time"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/domain/report"
	"github.com/corpfin/backend/internal/domain/shared"
	"github.com/corpfin/backend/internal/infrastructure/rendering"
	"github.com/corpfin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReportService turns projection requests into rendered statement reports.
// It runs the model through the projection service (sharing its validation
// and result cache), binds the result to the built-in report template and
// hands the HTML to the configured PDF engine.
type ReportService struct {
	projections    *financeapp.ProjectionService
	templateEngine *rendering.TemplateEngine
	renderer       rendering.PDFRenderer
	engineName     string
	metrics        *telemetry.ModelMetrics
	logger         *zap.Logger
}

// ReportServiceConfig holds the dependencies for a ReportService.
// Renderer is nil when the rendering stack is disabled; the service then
// rejects every request with REPORTS_DISABLED.
type ReportServiceConfig struct {
	Projections    *financeapp.ProjectionService
	TemplateEngine *rendering.TemplateEngine
	Renderer       rendering.PDFRenderer
	EngineName     string
	Metrics        *telemetry.ModelMetrics
	Logger         *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(cfg ReportServiceConfig) *ReportService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	engine := cfg.TemplateEngine
	if engine == nil {
		engine = rendering.NewTemplateEngine()
	}
	return &ReportService{
		projections:    cfg.Projections,
		templateEngine: engine,
		renderer:       cfg.Renderer,
		engineName:     cfg.EngineName,
		metrics:        cfg.Metrics,
		logger:         log,
	}
}

// Enabled reports whether the rendering stack is available
func (s *ReportService) Enabled() bool {
	return s.renderer != nil
}

// RenderProjection runs the model and renders the statements as a report.
// PDF output goes through the configured engine; HTML output stops after
// template binding.
func (s *ReportService) RenderProjection(ctx context.Context, req RenderProjectionRequest) (*RenderedReport, error) {
	if !s.Enabled() {
		return nil, shared.ErrRenderingUnavailable
	}

	opts, err := req.renderOptions()
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ReportService", "RenderProjection",
		telemetry.WithAttribute(telemetry.SpanAttrRenderEngine, s.engineName),
		telemetry.WithAttribute(telemetry.SpanAttrPaperSize, opts.PaperSize.String()),
	)
	defer span.End()

	projection, err := s.projections.Run(ctx, financeapp.RunProjectionRequest{
		BaseYear:    req.BaseYear,
		Assumptions: req.Assumptions,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	html, err := s.renderHTML(ctx, projection, opts)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if opts.Format == report.FormatHTML {
		telemetry.SetOK(span)
		return &RenderedReport{
			RunID:       projection.RunID,
			Filename:    reportFilename(projection.RunID, "html"),
			Format:      report.FormatHTML,
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(html),
		}, nil
	}

	start := time.Now()
	var (
		result    *rendering.RenderResult
		renderErr error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("report_render", nil), func(ctx context.Context) {
		result, renderErr = s.renderer.Render(ctx, &rendering.RenderRequest{
			HTML:        html,
			PaperSize:   opts.PaperSize,
			Orientation: opts.Orientation,
			Margins:     opts.Margins,
			Title:       reportTitle(opts),
		})
	})
	if renderErr != nil {
		if s.metrics != nil {
			s.metrics.RecordRender(ctx, s.engineName, telemetry.RenderStatusFailed, time.Since(start))
		}
		telemetry.RecordError(span, renderErr)
		s.logger.Error("report rendering failed",
			zap.String("run_id", projection.RunID),
			zap.String("engine", s.engineName),
			zap.Error(renderErr),
		)
		return nil, fmt.Errorf("failed to render projection report: %w", renderErr)
	}

	if s.metrics != nil {
		s.metrics.RecordRender(ctx, s.engineName, telemetry.RenderStatusSuccess, result.RenderDuration)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPageCount, result.PageCount)
	telemetry.SetOK(span)

	s.logger.Info("projection report rendered",
		zap.String("run_id", projection.RunID),
		zap.String("engine", s.engineName),
		zap.Int("pages", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration),
	)

	return &RenderedReport{
		RunID:       projection.RunID,
		Filename:    reportFilename(projection.RunID, "pdf"),
		Format:      report.FormatPDF,
		ContentType: "application/pdf",
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}, nil
}

// renderHTML binds the projection to the built-in report template
func (s *ReportService) renderHTML(ctx context.Context, projection *financeapp.ProjectionResponse, opts report.RenderOptions) (string, error) {
	content, err := rendering.LoadTemplateContent(rendering.ProjectionReportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to load report template: %w", err)
	}

	data := BuildReportData(projection, opts)
	html, err := s.templateEngine.RenderString(ctx, "projection_report", content, data)
	if err != nil {
		return "", fmt.Errorf("failed to bind report template: %w", err)
	}
	return html, nil
}

// Close releases the rendering engine
func (s *ReportService) Close() error {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.Close()
}

func reportTitle(opts report.RenderOptions) string {
	if opts.Title != "" {
		return opts.Title
	}
	return DefaultReportTitle
}

func reportFilename(runID, ext string) string {
	// Short run-ID prefix keeps filenames readable in download dialogs
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("projection-%s.%s", short, ext)
}
