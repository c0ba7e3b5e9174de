// ABOUTME: Search form and days prompt for the TUI
// ABOUTME: Search routes through the store by criteria; the prompt runs recent or export
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/stellar/models"
)

var searchLabels = []string{"Name", "Phone", "Tag", "Notes"}

func (m Model) renderSearchView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SEARCH CONTACTS"))
	s.WriteString("\n\n")
	s.WriteString(m.renderBanner())

	for i, input := range m.searchInputs {
		if i == m.searchFocus {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.status))
		s.WriteString("\n")
	}

	help := []string{
		"Tab: Next field",
		"Enter: Search",
		"Esc: Cancel",
		"One field searches it directly; several use advanced search (phone is ignored there)",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m *Model) initSearchForm() {
	inputs := make([]textinput.Model, len(searchLabels))
	for i, label := range searchLabels {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = label
		inputs[i].CharLimit = 100
	}

	c := m.state.Criteria
	inputs[0].SetValue(c.Name)
	inputs[1].SetValue(c.Phone)
	inputs[2].SetValue(string(c.Tag))
	inputs[3].SetValue(c.Notes)

	m.searchInputs = inputs
	m.searchFocus = 0
	m.status = ""
	for i := range m.searchInputs {
		if i == 0 {
			m.searchInputs[i].Focus()
		} else {
			m.searchInputs[i].Blur()
		}
	}
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.status = ""
		m.viewMode = ViewList
		return m, nil
	case "tab", "down", "shift+tab", "up":
		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = len(m.searchInputs) - 1
		}
		m.searchInputs[m.searchFocus].Blur()
		m.searchFocus = (m.searchFocus + step) % len(m.searchInputs)
		m.searchInputs[m.searchFocus].Focus()
		return m, nil
	case "enter":
		criteria, err := m.searchCriteria()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		m.selectedRow = 0
		m.viewMode = ViewList
		return m, m.searchCmd(criteria)
	}

	var cmd tea.Cmd
	m.searchInputs[m.searchFocus], cmd = m.searchInputs[m.searchFocus].Update(msg)
	return m, cmd
}

func (m Model) searchCriteria() (models.SearchCriteria, error) {
	c := models.SearchCriteria{
		Name:  strings.TrimSpace(m.searchInputs[0].Value()),
		Phone: strings.TrimSpace(m.searchInputs[1].Value()),
		Notes: strings.TrimSpace(m.searchInputs[3].Value()),
	}
	if raw := strings.TrimSpace(m.searchInputs[2].Value()); raw != "" {
		tag, err := models.ParseTag(raw)
		if err != nil {
			return models.SearchCriteria{}, err
		}
		c.Tag = tag
	}
	return c, nil
}

func (m *Model) initPrompt(kind promptKind, days int) {
	m.prompt = kind
	m.promptInput = textinput.New()
	m.promptInput.Placeholder = "Days"
	m.promptInput.CharLimit = 4
	m.promptInput.SetValue(strconv.Itoa(days))
	m.promptInput.Focus()
	m.status = ""
}

func (m Model) renderPromptView() string {
	var s strings.Builder

	title := "RECENT CONTACTS"
	if m.prompt == promptExport {
		title = "EXPORT CONTACTS"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(m.renderBanner())
	s.WriteString("Days: ")
	s.WriteString(m.promptInput.View())
	s.WriteString("\n")
	if m.status != "" {
		s.WriteString(errorStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("Enter: Run • Esc: Cancel"))
	return s.String()
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.status = ""
		m.viewMode = ViewList
		return m, nil
	case "enter":
		days, err := strconv.Atoi(strings.TrimSpace(m.promptInput.Value()))
		if err != nil || days <= 0 {
			m.status = fmt.Sprintf("invalid number of days %q", m.promptInput.Value())
			return m, nil
		}
		m.viewMode = ViewList
		if m.prompt == promptExport {
			m.exportDays = days
			m.status = "Exporting..."
			return m, m.exportCmd(days)
		}
		m.recentDays = days
		m.selectedRow = 0
		return m, m.recentCmd(days)
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}
