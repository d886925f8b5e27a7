package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EB622B"))
	labelStyle = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// Title renders a project title in the CurseForge accent color.
func Title(text string) string {
	return titleStyle.Render(text)
}

// Field renders one aligned label/value line.
func Field(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label), valueStyle.Render(value))
}
