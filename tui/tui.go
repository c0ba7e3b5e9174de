// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Renders store snapshots and drives contact actions from the keyboard
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/stellar/export"
	"github.com/harperreed/stellar/models"
	"github.com/harperreed/stellar/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewConfirmDelete
	ViewSearch
	ViewPrompt
)

// promptKind selects what the days prompt runs.
type promptKind int

const (
	promptRecent promptKind = iota
	promptExport
)

// Options configures the dashboard.
type Options struct {
	RecentDays int
	ExportDays int
	Saver      export.Saver
}

// Model is the main bubbletea model
type Model struct {
	ctx   context.Context
	store *store.Store
	saver export.Saver
	state store.State

	updates     <-chan struct{}
	unsubscribe func()

	viewMode ViewMode

	// List view state
	selectedRow int

	// Edit view state
	formInputs []textinput.Model
	focusIndex int
	editingID  int64
	formErrors models.FieldErrors

	// Search view state
	searchInputs []textinput.Model
	searchFocus  int

	// Days prompt state
	prompt      promptKind
	promptInput textinput.Model
	recentDays  int
	exportDays  int

	// Delete confirmation state
	deleteTarget models.Contact

	status string
	width  int
	height int
}

// NewModel creates a dashboard over st. The model subscribes to the store
// until Close is called.
func NewModel(ctx context.Context, st *store.Store, opts Options) Model {
	if opts.RecentDays <= 0 {
		opts.RecentDays = store.DefaultRecentDays
	}
	if opts.ExportDays <= 0 {
		opts.ExportDays = store.DefaultExportDays
	}
	if opts.Saver == nil {
		opts.Saver = export.NewFileSaver("")
	}

	updates := make(chan struct{}, 1)
	unsubscribe := st.Subscribe(func(store.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		store:       st,
		saver:       opts.Saver,
		state:       st.State(),
		updates:     updates,
		unsubscribe: unsubscribe,
		viewMode:    ViewList,
		recentDays:  opts.RecentDays,
		exportDays:  opts.ExportDays,
		width:       80,
		height:      24,
	}
}

// Close stops listening to the store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run starts the full-screen dashboard and blocks until the user quits.
func Run(ctx context.Context, st *store.Store, opts Options) error {
	m := NewModel(ctx, st, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.updates), m.refreshCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case stateChangedMsg:
		m.syncState()
		return m, waitForChange(m.updates)
	case opDoneMsg:
		m.syncState()
		if msg.err == nil && msg.op != store.OpSelect {
			m.status = ""
		}
		return m, nil
	case contactSavedMsg:
		return m.handleContactSaved(msg)
	case contactDeletedMsg:
		m.syncState()
		if msg.err == nil {
			m.viewMode = ViewList
			m.status = fmt.Sprintf("Deleted %s", m.deleteTarget.Name)
		}
		return m, nil
	case exportedMsg:
		m.syncState()
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "Saved export to " + msg.path
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) syncState() {
	m.state = m.store.State()
	if m.selectedRow >= len(m.state.Contacts) {
		m.selectedRow = max(0, len(m.state.Contacts)-1)
	}
}

func (m Model) handleContactSaved(msg contactSavedMsg) (tea.Model, tea.Cmd) {
	m.syncState()
	var verr *models.ValidationError
	switch {
	case errors.As(msg.err, &verr):
		m.formErrors = verr.Fields
	case msg.err != nil:
		m.formErrors = nil
	default:
		m.formErrors = nil
		m.viewMode = ViewList
		m.status = fmt.Sprintf("Saved %s", msg.contact.Name)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewSearch:
		return m.renderSearchView()
	case ViewPrompt:
		return m.renderPromptView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewSearch:
		return m.handleSearchKeys(msg)
	case ViewPrompt:
		return m.handlePromptKeys(msg)
	}

	return m, nil
}

func (m Model) renderBanner() string {
	if m.state.Error == "" {
		return ""
	}
	return errorStyle.Render("Error: "+m.state.Error) + "\n\n"
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activePageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	inactivePageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)
