package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type workDoneMsg struct{}

type spinnerModel struct {
	spinner     spinner.Model
	message     string
	style       lipgloss.Style
	done        bool
	interrupted bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.interrupted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return m.spinner.View() + " " + m.style.Render(m.message) + "\n"
}

// WithSpinner runs fn while a spinner shows message. Off a terminal it prints
// one status line instead. Ctrl+C cancels the context passed to fn.
func (t *Terminal) WithSpinner(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	if !t.tty {
		t.Dim("⏳ " + message + "...")
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = t.styles.Accent

	p := tea.NewProgram(spinnerModel{spinner: sp, message: message, style: t.styles.Muted},
		tea.WithOutput(t.w),
		tea.WithContext(ctx),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(ctx)
		p.Send(workDoneMsg{})
	}()

	final, _ := p.Run()
	if m, ok := final.(spinnerModel); ok && m.interrupted {
		cancel()
	}
	return <-errCh
}
