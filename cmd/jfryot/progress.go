package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vadimtrunov/jfryot/internal/tracker/ryot"
)

// runWithSpinner runs fn while a spinner is drawn on w.
func runWithSpinner(ctx context.Context, w io.Writer, label string, fn exportFunc) ([]ryot.Item, error) {
	p := tea.NewProgram(newProgressModel(ctx, label, fn),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	m, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("run progress: %w", err)
	}

	pm, ok := m.(progressModel)
	if !ok {
		return nil, errors.New("unexpected model type from tea program")
	}
	if !pm.done {
		return nil, errors.New("export interrupted")
	}
	return pm.items, pm.err
}

// exportDoneMsg carries the traversal result back to the program.
type exportDoneMsg struct {
	items []ryot.Item
	err   error
}

type progressModel struct {
	ctx     context.Context
	run     exportFunc
	label   string
	spinner spinner.Model
	items   []ryot.Item
	err     error
	done    bool
}

func newProgressModel(ctx context.Context, label string, fn exportFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return progressModel{
		ctx:     ctx,
		run:     fn,
		label:   label,
		spinner: s,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.export())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		m.items = msg.items
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View draws nothing once the export finished.
func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + styleDim.Render(" "+m.label) + "\n"
}

func (m progressModel) export() tea.Cmd {
	return func() tea.Msg {
		items, err := m.run(m.ctx)
		return exportDoneMsg{items: items, err: err}
	}
}
