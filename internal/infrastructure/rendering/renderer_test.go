package rendering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpfin/backend/internal/domain/report"
)

func TestRenderError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewRenderError(ErrCodeRenderFailed, "rendering failed", nil)

		assert.Equal(t, "rendering failed", err.Error())
		assert.Equal(t, ErrCodeRenderFailed, err.Code)
		assert.Nil(t, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := NewRenderError(ErrCodeRenderFailed, "wkhtmltopdf execution failed", cause)

		assert.Equal(t, "wkhtmltopdf execution failed: exit status 1", err.Error())
		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("matches with errors.As", func(t *testing.T) {
		var target *RenderError
		err := error(NewRenderError(ErrCodeRenderTimeout, "timed out", nil))

		require.True(t, errors.As(err, &target))
		assert.Equal(t, ErrCodeRenderTimeout, target.Code)
	})
}

func TestBuildPaperSizeArgs(t *testing.T) {
	tests := []struct {
		name        string
		paperSize   report.PaperSize
		orientation report.Orientation
		wantSize    string
		wantOrient  string
	}{
		{"A4 portrait", report.PaperSizeA4, report.OrientationPortrait, "A4", "Portrait"},
		{"A5 landscape", report.PaperSizeA5, report.OrientationLandscape, "A5", "Landscape"},
		{"Letter portrait", report.PaperSizeLetter, report.OrientationPortrait, "Letter", "Portrait"},
		{"unknown falls back to A4", report.PaperSize("UNKNOWN"), report.OrientationPortrait, "A4", "Portrait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := buildPaperSizeArgs(tt.paperSize, tt.orientation)

			assert.Contains(t, args, "--page-size")
			assert.Contains(t, args, tt.wantSize)
			assert.Contains(t, args, "--orientation")
			assert.Contains(t, args, tt.wantOrient)
		})
	}
}

func TestEstimatePageCount(t *testing.T) {
	t.Run("counts page objects", func(t *testing.T) {
		pdf := []byte("%PDF-1.4 /Type /Pages /Type /Page /Type /Page /Type /Page")
		assert.Equal(t, 3, estimatePageCount(pdf))
	})

	t.Run("returns at least one page", func(t *testing.T) {
		assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
	})
}
