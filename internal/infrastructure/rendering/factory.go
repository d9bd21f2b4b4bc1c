package rendering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/corpfin/backend/internal/infrastructure/config"
)

// Rendering engine identifiers, matching the rendering.engine configuration values
const (
	EngineChromedp    = "chromedp"
	EngineWkhtmltopdf = "wkhtmltopdf"
)

// NewPDFRenderer creates the configured rendering engine
func NewPDFRenderer(cfg config.RenderingConfig, logger *zap.Logger) (PDFRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Engine {
	case EngineChromedp:
		renderer, err := NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: cfg.Timeout,
			RemoteURL:      cfg.ChromeRemoteURL,
			NoSandbox:      cfg.NoSandbox,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chromedp renderer: %w", err)
		}
		logger.Info("using chromedp rendering engine",
			zap.String("remote_url", cfg.ChromeRemoteURL),
			zap.Duration("timeout", cfg.Timeout),
		)
		return renderer, nil

	case EngineWkhtmltopdf:
		renderer, err := NewWkhtmltopdfRenderer(&WkhtmltopdfConfig{
			BinaryPath:     cfg.WkhtmltopdfPath,
			DefaultTimeout: cfg.Timeout,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create wkhtmltopdf renderer: %w", err)
		}
		logger.Info("using wkhtmltopdf rendering engine",
			zap.String("binary", cfg.WkhtmltopdfPath),
			zap.Duration("timeout", cfg.Timeout),
		)
		return renderer, nil

	default:
		return nil, fmt.Errorf("unknown rendering engine: %q", cfg.Engine)
	}
}
