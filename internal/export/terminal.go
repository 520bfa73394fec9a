package export

import (
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/joelkehle/kyc-screener/internal/screening"
)

const defaultWordWrap = 100

// RenderTerminal styles the Markdown report for a terminal. theme is
// "light" or "dark"; anything else uses light.
func RenderTerminal(report screening.ComprehensiveReport, theme string, width int) (string, error) {
	if theme != "dark" {
		theme = "light"
	}
	if width <= 0 {
		width = defaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(BuildMarkdown(report))
	if err != nil {
		return "", fmt.Errorf("render terminal report: %w", err)
	}
	return out, nil
}
