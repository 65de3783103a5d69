package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/storycurator/curator/internal/domain"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#5F5FD7")).
	Padding(0, 1)

var severityCritical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d32f2f"))
var severityHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
var severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa726"))
var severityLow = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff59d"))

var cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return severityCritical
	case domain.SeverityHigh:
		return severityHigh
	case domain.SeverityMedium:
		return severityMedium
	default:
		return severityLow
	}
}
