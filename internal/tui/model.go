package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robert-crandall/journal-app-sub006/internal/engine"
	"github.com/robert-crandall/journal-app-sub006/internal/storage"
	"github.com/robert-crandall/journal-app-sub006/internal/ui"
)

// quickAwardXP is the amount granted by the dashboard's one-key ad-hoc award.
const quickAwardXP = 10

type dashModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string

	width  int
	height int

	progress []engine.StatProgress
	history  []storage.XPGrant

	selected    int
	showHistory bool

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	progress []engine.StatProgress
	err      error
}

type historyMsg struct {
	statID int64
	grants []storage.XPGrant
	err    error
}

type awardedMsg struct {
	res *engine.AwardResult
	err error
}

func newDashModel(ctx context.Context, svc *engine.Service, userID string) dashModel {
	return dashModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m dashModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		progress, err := m.svc.Progress(m.ctx, m.userID)
		return loadedMsg{progress: progress, err: err}
	}
}

func (m dashModel) historyCmd(statID int64) tea.Cmd {
	return func() tea.Msg {
		grants, err := m.svc.History(m.ctx, m.userID, statID, 10, 0)
		return historyMsg{statID: statID, grants: grants, err: err}
	}
}

func (m dashModel) awardCmd(statID int64) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.AwardXP(m.ctx, m.userID, engine.AwardInput{
			StatID: statID,
			Amount: quickAwardXP,
			Source: engine.SourceAdhoc,
			Reason: "quick award from dashboard",
		})
		return awardedMsg{res: res, err: err}
	}
}

func (m dashModel) selectedStat() *engine.StatProgress {
	if m.selected < 0 || m.selected >= len(m.progress) {
		return nil
	}
	return &m.progress[m.selected]
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.progress = msg.progress
		if m.selected >= len(m.progress) {
			m.selected = len(m.progress) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		if m.showHistory {
			if st := m.selectedStat(); st != nil {
				return m, m.historyCmd(st.Stat.ID)
			}
		}
		return m, nil
	case historyMsg:
		if msg.err != nil {
			m.lastLog = "History failed: " + msg.err.Error()
			return m, nil
		}
		m.history = msg.grants
		return m, nil
	case awardedMsg:
		if msg.err != nil {
			m.lastLog = "Award failed: " + msg.err.Error()
			return m, nil
		}
		if msg.res.LeveledUp {
			m.lastLog = fmt.Sprintf("+%d XP to %s — %s level %d!", quickAwardXP, msg.res.Stat.Name, ui.BadgeLevelUp, msg.res.NewLevel)
		} else {
			m.lastLog = fmt.Sprintf("+%d XP to %s (level %d)", quickAwardXP, msg.res.Stat.Name, msg.res.Stat.CurrentLevel)
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				if m.showHistory {
					if st := m.selectedStat(); st != nil {
						return m, m.historyCmd(st.Stat.ID)
					}
				}
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.progress)-1 {
				m.selected++
				if m.showHistory {
					if st := m.selectedStat(); st != nil {
						return m, m.historyCmd(st.Stat.ID)
					}
				}
			}
			return m, nil
		case "enter":
			st := m.selectedStat()
			if st == nil {
				return m, nil
			}
			m.showHistory = !m.showHistory
			if m.showHistory {
				return m, m.historyCmd(st.Stat.ID)
			}
			m.history = nil
			return m, nil
		case "+", "a":
			st := m.selectedStat()
			if st == nil {
				m.lastLog = "No stat selected."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Awarding %d XP to %s…", quickAwardXP, st.Stat.Name)
			return m, m.awardCmd(st.Stat.ID)
		}
	}
	return m, nil
}

func (m dashModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var out []string
	out = append(out, "Stats Dashboard — user: "+m.userID)
	out = append(out, "")

	if m.loading {
		out = append(out, "Loading…")
		return strings.Join(out, "\n") + m.footer()
	}

	if len(m.progress) == 0 {
		out = append(out, "(no stats yet — create one with `lq stat add`)")
		return strings.Join(out, "\n") + m.footer()
	}

	for i, p := range m.progress {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		bar := ui.ProgressBar(
			p.Stat.CumulativeXP-p.LevelFloor,
			p.NextLevelAt-p.LevelFloor,
			20,
		)
		out = append(out, fmt.Sprintf("%s%-14s L%-3d %s %d XP (%d to next)",
			cursor, p.Stat.Name, p.Stat.CurrentLevel, bar, p.Stat.CumulativeXP, p.XPToNext))
	}

	if m.showHistory {
		out = append(out, "")
		st := m.selectedStat()
		if st != nil {
			out = append(out, fmt.Sprintf("Recent grants — %s", st.Stat.Name))
		}
		if len(m.history) == 0 {
			out = append(out, "(no grants yet)")
		}
		for _, g := range m.history {
			reason := ""
			if g.Reason != nil {
				reason = " — " + *g.Reason
			}
			out = append(out, fmt.Sprintf("  %s %+d XP [%s] %s%s",
				g.CreatedAt.Local().Format("Jan 02 15:04"), g.Amount, g.SourceType, ui.SourceIcon(g.SourceType), reason))
		}
	}

	out = append(out, "")
	out = append(out, "Keys: j/k move · enter history · +/a quick award · r refresh · q quit")
	return strings.Join(out, "\n") + m.footer()
}

func (m dashModel) footer() string {
	return "\n" + m.lastLog + "\n"
}
