// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Asks before removing a contact and returns to the list once the delete completes
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/stellar/store"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 3).
			Width(56)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	c := m.deleteTarget

	lines := []string{
		warningStyle.Render(fmt.Sprintf("Delete %s?", c.Name)),
		"",
		fmt.Sprintf("%s • %s • %s", c.Email, c.Phone, c.Tag),
		"",
		"The contact is removed from the server and cannot be restored.",
		"",
	}

	if m.state.Pending(store.OpDelete) {
		lines = append(lines, summaryStyle.Render("Deleting..."))
	} else {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Left,
			buttonStyle.Background(lipgloss.Color("9")).MarginRight(2).Render("y  delete"),
			buttonStyle.Background(lipgloss.Color("8")).Render("n  keep"),
		))
	}
	if m.state.Error != "" {
		lines = append(lines, "", errorStyle.Render(m.state.Error))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		confirmBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.state.Pending(store.OpDelete) {
			return m, nil
		}
		return m, m.deleteCmd(m.deleteTarget.ID)
	case "n", "N", "esc":
		m.viewMode = ViewList
		if m.state.Selected != nil {
			m.viewMode = ViewDetail
		}
	}

	return m, nil
}
