package report

import (
	"github.com/corpfin/backend/internal/domain/finance"
	"github.com/corpfin/backend/internal/domain/report"
)

// RenderProjectionRequest is a projection request plus optional presentation
// options. The model inputs are identical to the projection endpoint so a
// caller can switch between JSON and PDF output without reshaping the body.
type RenderProjectionRequest struct {
	BaseYear    finance.BaseYear         `json:"base_year" binding:"required"`
	Assumptions finance.ModelAssumptions `json:"assumptions" binding:"required"`
	Options     *ReportOptionsDTO        `json:"options,omitempty"`
}

// ReportOptionsDTO selects the output shape of the rendered report. Zero
// values fall back to an A4 portrait PDF with diagnostics included.
type ReportOptionsDTO struct {
	Format             string      `json:"format" binding:"omitempty,oneof=HTML PDF"`
	Title              string      `json:"title" binding:"omitempty,max=200"`
	PaperSize          string      `json:"paper_size" binding:"omitempty,oneof=A4 A5 LETTER"`
	Orientation        string      `json:"orientation" binding:"omitempty,oneof=PORTRAIT LANDSCAPE"`
	Margins            *MarginsDTO `json:"margins,omitempty"`
	IncludeDiagnostics *bool       `json:"include_diagnostics,omitempty"`
}

// MarginsDTO represents page margins in millimeters
type MarginsDTO struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// RenderedReport is the output of a report render. PDFData holds the raw
// document bytes regardless of format; ContentType tells the transport how
// to serve them.
type RenderedReport struct {
	RunID       string
	Filename    string
	Format      report.Format
	ContentType string
	Data        []byte
	PageCount   int
}

// renderOptions converts the DTO into the validated domain value object
func (r RenderProjectionRequest) renderOptions() (report.RenderOptions, error) {
	if r.Options == nil {
		opts := report.DefaultRenderOptions()
		opts.IncludeDiagnostics = true
		return opts, nil
	}

	margins := report.Margins{}
	if r.Options.Margins != nil {
		var err error
		margins, err = report.NewMargins(
			r.Options.Margins.Top,
			r.Options.Margins.Right,
			r.Options.Margins.Bottom,
			r.Options.Margins.Left,
		)
		if err != nil {
			return report.RenderOptions{}, err
		}
	}

	opts, err := report.NewRenderOptions(
		report.Format(r.Options.Format),
		report.PaperSize(r.Options.PaperSize),
		report.Orientation(r.Options.Orientation),
		margins,
	)
	if err != nil {
		return report.RenderOptions{}, err
	}

	opts.Title = r.Options.Title
	opts.IncludeDiagnostics = true
	if r.Options.IncludeDiagnostics != nil {
		opts.IncludeDiagnostics = *r.Options.IncludeDiagnostics
	}
	return opts, nil
}
