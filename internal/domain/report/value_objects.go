package report

import "github.com/corpfin/backend/internal/domain/shared"

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`    // Top margin in mm
	Right  int `json:"right"`  // Right margin in mm
	Bottom int `json:"bottom"` // Bottom margin in mm
	Left   int `json:"left"`   // Left margin in mm
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left int) (Margins, error) {
	if top < 0 || right < 0 || bottom < 0 || left < 0 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot be negative")
	}
	if top > 100 || right > 100 || bottom > 100 || left > 100 {
		return Margins{}, shared.NewDomainError("INVALID_MARGINS", "Margins cannot exceed 100mm")
	}
	return Margins{
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Left:   left,
	}, nil
}

// DefaultMargins returns the default page margins for A4 paper
func DefaultMargins() Margins {
	return Margins{
		Top:    10,
		Right:  10,
		Bottom: 10,
		Left:   10,
	}
}

// IsZero returns true if all margins are zero
func (m Margins) IsZero() bool {
	return m.Top == 0 && m.Right == 0 && m.Bottom == 0 && m.Left == 0
}

// Equals checks if two Margins are equal
func (m Margins) Equals(other Margins) bool {
	return m.Top == other.Top &&
		m.Right == other.Right &&
		m.Bottom == other.Bottom &&
		m.Left == other.Left
}

// RenderOptions describes the shape of a rendered projection report
type RenderOptions struct {
	Format             Format      `json:"format"`
	PaperSize          PaperSize   `json:"paper_size"`
	Orientation        Orientation `json:"orientation"`
	Margins            Margins     `json:"margins"`
	Title              string      `json:"title,omitempty"`
	IncludeDiagnostics bool        `json:"include_diagnostics"`
}

// NewRenderOptions creates a validated RenderOptions value object.
// Empty fields fall back to the defaults (PDF, A4, portrait, 10mm margins).
func NewRenderOptions(format Format, paperSize PaperSize, orientation Orientation, margins Margins) (RenderOptions, error) {
	if format == "" {
		format = FormatPDF
	}
	if !format.IsValid() {
		return RenderOptions{}, shared.NewInvalidInput("format", "must be one of HTML, PDF")
	}

	if paperSize == "" {
		paperSize = PaperSizeA4
	}
	if !paperSize.IsValid() {
		return RenderOptions{}, shared.NewInvalidInput("paper_size", "must be one of A4, A5, LETTER")
	}

	if orientation == "" {
		orientation = OrientationPortrait
	}
	if !orientation.IsValid() {
		return RenderOptions{}, shared.NewInvalidInput("orientation", "must be one of PORTRAIT, LANDSCAPE")
	}

	if margins.IsZero() {
		margins = DefaultMargins()
	}
	if _, err := NewMargins(margins.Top, margins.Right, margins.Bottom, margins.Left); err != nil {
		return RenderOptions{}, err
	}

	return RenderOptions{
		Format:      format,
		PaperSize:   paperSize,
		Orientation: orientation,
		Margins:     margins,
	}, nil
}

// DefaultRenderOptions returns the options used when a render request
// specifies nothing: an A4 portrait PDF with 10mm margins
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Format:      FormatPDF,
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
	}
}
