package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/stellar/models"
)

// Form field order; formKeys maps each input to its validation key.
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldTag
	fieldNotes
)

var formKeys = []string{"name", "email", "phone", "tags", "notes"}

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.editingID == 0 {
		s.WriteString(titleStyle.Render("NEW CONTACT"))
	} else {
		s.WriteString(titleStyle.Render("EDIT CONTACT"))
	}
	s.WriteString("\n\n")
	s.WriteString(m.renderBanner())

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		if msg, ok := m.formErrors[formKeys[i]]; ok {
			s.WriteString("  ")
			s.WriteString(errorStyle.Render(msg))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
		"Tag: " + strings.Join(tagNames(), "/"),
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formErrors = nil
		m.viewMode = ViewList
		if m.state.Selected != nil {
			m.viewMode = ViewDetail
		}
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		contact, fieldErrs := m.formContact()
		if len(fieldErrs) > 0 {
			m.formErrors = fieldErrs
			return m, nil
		}
		return m, m.saveCmd(m.editingID, contact)
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initContactForm(c models.Contact) {
	inputs := make([]textinput.Model, len(formKeys))

	inputs[fieldName] = textinput.New()
	inputs[fieldName].Placeholder = "Name"
	inputs[fieldName].CharLimit = 100
	inputs[fieldName].SetValue(c.Name)

	inputs[fieldEmail] = textinput.New()
	inputs[fieldEmail].Placeholder = "Email"
	inputs[fieldEmail].CharLimit = 100
	inputs[fieldEmail].SetValue(c.Email)

	inputs[fieldPhone] = textinput.New()
	inputs[fieldPhone].Placeholder = "Phone"
	inputs[fieldPhone].CharLimit = 30
	inputs[fieldPhone].SetValue(c.Phone)

	inputs[fieldTag] = textinput.New()
	inputs[fieldTag].Placeholder = "Tag"
	inputs[fieldTag].CharLimit = 10
	inputs[fieldTag].SetValue(string(c.Tag))

	inputs[fieldNotes] = textinput.New()
	inputs[fieldNotes].Placeholder = "Notes"
	inputs[fieldNotes].CharLimit = 500
	inputs[fieldNotes].SetValue(c.Notes)

	m.formInputs = inputs
	m.formErrors = nil
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// formContact reads the inputs. A bad tag is reported alongside the regular
// field validation so every problem shows at once.
func (m Model) formContact() (models.Contact, models.FieldErrors) {
	contact := models.Contact{
		Name:  m.formInputs[fieldName].Value(),
		Email: m.formInputs[fieldEmail].Value(),
		Phone: m.formInputs[fieldPhone].Value(),
		Notes: m.formInputs[fieldNotes].Value(),
		Tag:   models.DefaultTag,
	}

	fieldErrs := models.FieldErrors{}
	if raw := strings.TrimSpace(m.formInputs[fieldTag].Value()); raw != "" {
		tag, err := models.ParseTag(raw)
		if err != nil {
			fieldErrs["tags"] = err.Error()
		} else {
			contact.Tag = tag
		}
	}

	var verr *models.ValidationError
	if err := models.ValidateContact(contact); errors.As(err, &verr) {
		for k, v := range verr.Fields {
			if _, seen := fieldErrs[k]; !seen {
				fieldErrs[k] = v
			}
		}
	}
	return contact.Normalized(), fieldErrs
}

func tagNames() []string {
	names := make([]string, len(models.Tags))
	for i, t := range models.Tags {
		names[i] = string(t)
	}
	return names
}
