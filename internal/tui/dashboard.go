package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robert-crandall/journal-app-sub006/internal/engine"
)

func RunDashboard(ctx context.Context, svc *engine.Service, userID string, out io.Writer) error {
	m := newDashModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
