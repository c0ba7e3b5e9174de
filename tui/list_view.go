package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

// pageWindowSize caps how many page numbers the footer shows.
const pageWindowSize = 5

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("STELLAR CONTACTS"))
	s.WriteString("\n")
	s.WriteString(m.renderSummary())
	s.WriteString("\n\n")
	s.WriteString(m.renderBanner())

	if len(m.state.Contacts) == 0 && !m.state.Loading() {
		s.WriteString(summaryStyle.Render("No contacts found."))
	} else {
		s.WriteString(m.renderContactsTable())
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderPagination())
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}
	s.WriteString("\n")
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderSummary() string {
	parts := []string{
		fmt.Sprintf("%d contacts", m.state.TotalContacts),
		m.state.ListLabel(),
	}
	if m.state.Loading() {
		parts = append(parts, "Loading...")
	}
	return summaryStyle.Render(strings.Join(parts, " • "))
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 28},
		{Title: "Phone", Width: 16},
		{Title: "Tag", Width: 8},
	}

	rows := make([]table.Row, 0, len(m.state.Contacts))
	for _, contact := range m.state.Contacts {
		rows = append(rows, table.Row{
			strconv.FormatInt(contact.ID, 10),
			contact.Name,
			contact.Email,
			contact.Phone,
			string(contact.Tag),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(3, min(len(rows)+2, m.height-10))),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderPagination() string {
	if m.state.Source != store.SourcePage {
		return summaryStyle.Render("r: back to paged list")
	}

	var pages []string
	for _, p := range models.PageWindow(m.state.Pagination.Page, m.state.TotalPages, pageWindowSize) {
		label := strconv.Itoa(p + 1)
		if p == m.state.Pagination.Page {
			pages = append(pages, activePageStyle.Render(label))
		} else {
			pages = append(pages, inactivePageStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		inactivePageStyle.Render("‹"),
		strings.Join(pages, ""),
		inactivePageStyle.Render("›"),
		summaryStyle.Render(fmt.Sprintf("  %d per page", m.state.Pagination.Size)),
	)
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: View",
		"n: New",
		"e: Edit",
		"d: Delete",
		"/: Search",
		"s/i: Sort name/id",
		"t: Recent",
		"x: Export",
		"←/→: Page",
		"+: Page size",
		"r: Reset",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.state.Contacts)-1 {
			m.selectedRow++
		}
	case "enter":
		if c, ok := m.highlighted(); ok {
			m.viewMode = ViewDetail
			return m, m.selectCmd(c.ID)
		}
	case "n":
		m.editingID = 0
		m.initContactForm(models.Contact{Tag: models.DefaultTag})
		m.viewMode = ViewEdit
	case "e":
		if c, ok := m.highlighted(); ok {
			m.editingID = c.ID
			m.initContactForm(c)
			m.viewMode = ViewEdit
		}
	case "d":
		if c, ok := m.highlighted(); ok {
			m.deleteTarget = c
			m.viewMode = ViewConfirmDelete
		}
	case "/":
		m.initSearchForm()
		m.viewMode = ViewSearch
	case "r":
		m.selectedRow = 0
		return m, m.refreshCmd()
	case "s":
		return m, m.sortCmd(models.SortByName)
	case "i":
		return m, m.sortCmd(models.SortByID)
	case "t":
		m.initPrompt(promptRecent, m.recentDays)
		m.viewMode = ViewPrompt
	case "x":
		m.initPrompt(promptExport, m.exportDays)
		m.viewMode = ViewPrompt
	case "left", "h":
		if m.state.Source == store.SourcePage && m.state.Pagination.Page > 0 {
			m.selectedRow = 0
			return m, m.setPageCmd(m.state.Pagination.Page - 1)
		}
	case "right", "l":
		if m.state.Source == store.SourcePage && m.state.Pagination.Page < m.state.TotalPages-1 {
			m.selectedRow = 0
			return m, m.setPageCmd(m.state.Pagination.Page + 1)
		}
	case "+":
		m.selectedRow = 0
		return m, m.setPageSizeCmd(m.state.Pagination.NextSize())
	case "esc":
		m.status = ""
		m.store.ClearError()
		m.syncState()
	}

	return m, nil
}

func (m Model) highlighted() (models.Contact, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.state.Contacts) {
		return models.Contact{}, false
	}
	return m.state.Contacts[m.selectedRow], true
}
