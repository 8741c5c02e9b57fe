package shell

import "github.com/charmbracelet/lipgloss"

// MinDetailWidth is the minimum character width for the detail pane.
const MinDetailWidth = 28

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths splits a total width into transcript and detail pane widths.
// The detail pane gets 1/3 (minimum MinDetailWidth), the transcript the rest.
func PaneWidths(totalWidth int) (transcript, detail int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	detail = totalWidth / 3
	if detail < MinDetailWidth {
		detail = MinDetailWidth
	}
	transcript = max(totalWidth-detail, 0)
	return transcript, detail
}
