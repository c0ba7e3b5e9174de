package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/stellar/store"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")
	s.WriteString(m.renderBanner())
	s.WriteString(m.renderContactDetail())
	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail() string {
	contact := m.state.Selected
	if contact == nil {
		if m.state.Pending(store.OpSelect) {
			return summaryStyle.Render("Loading...")
		}
		return summaryStyle.Render("No contact selected.")
	}

	var s strings.Builder

	s.WriteString(m.renderField("ID", strconv.FormatInt(contact.ID, 10)))
	s.WriteString(m.renderField("Name", contact.Name))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Tag", string(contact.Tag)))
	if contact.CreatedOn != nil && !contact.CreatedOn.IsZero() {
		s.WriteString(m.renderField("Created", contact.CreatedOn.Format("2006-01-02 15:04")))
	}
	s.WriteString(m.renderField("Notes", contact.Notes))

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"d: Delete",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.store.ClearSelection()
		m.syncState()
		m.viewMode = ViewList
	case "e":
		if sel := m.state.Selected; sel != nil {
			m.editingID = sel.ID
			m.initContactForm(*sel)
			m.viewMode = ViewEdit
		}
	case "d":
		if sel := m.state.Selected; sel != nil {
			m.deleteTarget = *sel
			m.viewMode = ViewConfirmDelete
		}
	}

	return m, nil
}
