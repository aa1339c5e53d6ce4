package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/pgcsv/internal/tui/components"
	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// PathPrompter asks for the input path with a full-screen text input and
// Tab completion. Use it only when IsInteractive reports true.
type PathPrompter struct {
	suffix string
}

// NewPathPrompter creates a prompter that completes directories and files
// ending in suffix.
func NewPathPrompter(suffix string) *PathPrompter {
	return &PathPrompter{suffix: suffix}
}

func (p *PathPrompter) PromptPath(ctx context.Context) (string, error) {
	program := tea.NewProgram(newPathPromptModel(p.suffix), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(pathPromptModel)
	if !ok || m.cancelled || m.path == "" {
		return "", fmt.Errorf("no path given: %w", pgcsv.ErrUsage)
	}
	return m.path, nil
}

type pathPromptModel struct {
	field     components.TextField
	completer *components.PathCompleter
	keys      KeyMap
	path      string
	cancelled bool
}

func newPathPromptModel(suffix string) pathPromptModel {
	field := components.NewTextField(
		fmt.Sprintf("Path to a %s file or a directory", suffix),
		"./exports",
	)
	field.Focus()

	return pathPromptModel{
		field:     field,
		completer: components.NewPathCompleter(suffix),
		keys:      DefaultKeyMap(),
	}
}

func (m pathPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(km, m.keys.Complete):
			m.field.SetValue(m.completer.Next(m.field.Value()))
			return m, nil
		case key.Matches(km, m.keys.Submit):
			if err := m.field.Validate(); err != nil {
				return m, nil
			}
			m.path = strings.TrimSpace(m.field.Value())
			return m, tea.Quit
		}
		m.completer.Reset()
	}

	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

func (m pathPromptModel) View() string {
	if m.path != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("pgcsv"))
	b.WriteString("\n\n")
	b.WriteString(m.field.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.keys.HelpText()))
	b.WriteString("\n")
	return b.String()
}
