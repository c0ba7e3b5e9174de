// ABOUTME: Bubbletea commands that run store actions off the UI goroutine
// ABOUTME: Each command reports back with a message the model folds into its view state
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

// stateChangedMsg is sent whenever the store publishes a new snapshot.
type stateChangedMsg struct{}

// opDoneMsg is sent when a list-level store action finishes.
type opDoneMsg struct {
	op  store.Op
	err error
}

// contactSavedMsg is sent when a create or update from the form finishes.
type contactSavedMsg struct {
	contact models.Contact
	err     error
}

// contactDeletedMsg is sent when a delete finishes.
type contactDeletedMsg struct {
	id  int64
	err error
}

// exportedMsg is sent when an export has been fetched and saved.
type exportedMsg struct {
	path string
	err  error
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func (m Model) runOp(op store.Op, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn()}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return m.runOp(store.OpRefresh, func() error { return m.store.Refresh(m.ctx) })
}

func (m Model) setPageCmd(page int) tea.Cmd {
	return m.runOp(store.OpRefresh, func() error { return m.store.SetPage(m.ctx, page) })
}

func (m Model) setPageSizeCmd(size int) tea.Cmd {
	return m.runOp(store.OpRefresh, func() error { return m.store.SetPageSize(m.ctx, size) })
}

func (m Model) selectCmd(id int64) tea.Cmd {
	return m.runOp(store.OpSelect, func() error { return m.store.SelectContact(m.ctx, id) })
}

func (m Model) searchCmd(criteria models.SearchCriteria) tea.Cmd {
	return m.runOp(store.OpSearch, func() error { return m.store.Search(m.ctx, criteria) })
}

func (m Model) sortCmd(field models.SortField) tea.Cmd {
	return m.runOp(store.OpSort, func() error { return m.store.ToggleSort(m.ctx, field) })
}

func (m Model) recentCmd(days int) tea.Cmd {
	return m.runOp(store.OpRecent, func() error { return m.store.Recent(m.ctx, days) })
}

func (m Model) saveCmd(id int64, c models.Contact) tea.Cmd {
	return func() tea.Msg {
		if id == 0 {
			created, err := m.store.CreateContact(m.ctx, c)
			return contactSavedMsg{contact: created, err: err}
		}
		updated, err := m.store.UpdateContact(m.ctx, id, c)
		return contactSavedMsg{contact: updated, err: err}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return contactDeletedMsg{id: id, err: m.store.DeleteContact(m.ctx, id)}
	}
}

func (m Model) exportCmd(days int) tea.Cmd {
	return func() tea.Msg {
		exp, err := m.store.ExportContacts(m.ctx, days)
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := m.saver.Save(exp.Filename, exp.Data)
		return exportedMsg{path: path, err: err}
	}
}
