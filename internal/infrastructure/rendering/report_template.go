package rendering

import (
	"embed"
	"fmt"
)

//go:embed templates/*.html
var templateFS embed.FS

// Built-in template file paths within the embedded filesystem
const (
	ProjectionReportTemplate = "templates/projection_report.html"
)

// LoadTemplateContent loads the HTML content for a built-in template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}
