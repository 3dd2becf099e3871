package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var errPromptCancelled = errors.New("discount choice cancelled")

// choiceModel asks the discount question on a single input line.
type choiceModel struct {
	question  string
	input     textinput.Model
	answer    string
	done      bool
	cancelled bool
}

func newChoiceModel(question string) choiceModel {
	ti := textinput.New()
	ti.Placeholder = "M or V"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Focus()
	return choiceModel{question: question, input: ti}
}

func (m choiceModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.answer = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m choiceModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n", promptStyle.Render(m.question), m.input.View())
}

func promptChoice(cmd *cobra.Command, question string) (string, error) {
	p := tea.NewProgram(newChoiceModel(question),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	m, ok := final.(choiceModel)
	if !ok || m.cancelled {
		return "", errPromptCancelled
	}
	return m.answer, nil
}
