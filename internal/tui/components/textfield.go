package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextField is a labeled single-line input with optional validation.
type TextField struct {
	label     string
	input     textinput.Model
	focused   bool
	err       error
	styles    textFieldStyles
}

type textFieldStyles struct {
	Label        lipgloss.Style
	Input        lipgloss.Style
	FocusedInput lipgloss.Style
	Error        lipgloss.Style
}

func defaultTextFieldStyles() textFieldStyles {
	return textFieldStyles{
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Input:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		FocusedInput: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// NewTextField creates a new text field.
func NewTextField(label, placeholder string) TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Width = 60

	return TextField{
		label:  label,
		input:  ti,
		styles: defaultTextFieldStyles(),
	}
}

// WithValue sets the initial value.
func (t TextField) WithValue(value string) TextField {
	t.input.SetValue(value)
	return t
}

// Focus focuses the text field.
func (t *TextField) Focus() tea.Cmd {
	t.focused = true
	return t.input.Focus()
}

// Blur removes focus from the text field.
func (t *TextField) Blur() {
	t.focused = false
	t.input.Blur()
}

// Update forwards msg to the input. Editing clears the last error.
func (t TextField) Update(msg tea.Msg) (TextField, tea.Cmd) {
	before := t.input.Value()
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	if t.input.Value() != before {
		t.err = nil
	}
	return t, cmd
}

func (t TextField) View() string {
	var b strings.Builder
	b.WriteString(t.styles.Label.Render(t.label))
	b.WriteString("\n")

	inputStyle := t.styles.Input
	if t.focused {
		inputStyle = t.styles.FocusedInput
	}
	b.WriteString(inputStyle.Render(t.input.View()))

	if t.err != nil {
		b.WriteString("\n")
		b.WriteString(t.styles.Error.Render(t.err.Error()))
	}
	return b.String()
}

// Value returns the current value.
func (t TextField) Value() string {
	return t.input.Value()
}

// SetValue replaces the value and moves the cursor to the end.
func (t *TextField) SetValue(v string) {
	t.input.SetValue(v)
	t.input.CursorEnd()
}

// Error returns the current validation error.
func (t TextField) Error() error {
	return t.err
}

// Validate runs validation and returns any error. Blank input is always
// rejected.
func (t *TextField) Validate() error {
	value := strings.TrimSpace(t.input.Value())
	if value == "" {
		t.err = ErrFieldRequired
	} else {
		t.err = nil
	}
	return t.err
}

// ErrFieldRequired is returned when a required field is empty.
var ErrFieldRequired = fieldError("this field is required")

type fieldError string

func (e fieldError) Error() string { return string(e) }
