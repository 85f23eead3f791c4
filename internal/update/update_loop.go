package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dailycheck/internal/scheduler"
	"github.com/sandeepkv93/dailycheck/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.scheduler != nil {
		return waitForDueCmd(m.scheduler.C())
	}
	return nil
}

func waitForDueCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			m = m.handlePaletteKey(typed)
			m.syncBubbleData()
			return m, nil
		}

		switch typed.String() {
		case m.Keys.Palette:
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Down, "down":
			m.moveCursor(1)
		case m.Keys.Up, "up":
			m.moveCursor(-1)
		case m.Keys.Toggle, " ":
			e, ok := m.selected()
			if !ok {
				m.Status = StatusBar{Text: "no checkbox selected", IsError: true}
				return m, nil
			}
			text, err := m.toggleLine(e.Line)
			m = m.withResult(text, err)
		case m.Keys.Preview:
			e, ok := m.selected()
			if !ok {
				return m, nil
			}
			text, err := m.previewLine(e.Line, 5)
			m = m.withResult(text, err)
		case m.Keys.Filter:
			m.cycleFilter()
		case m.Keys.Reload:
			m = m.withResult(fmt.Sprintf("reloaded %s", m.Path), m.reload())
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		default:
			return m, nil
		}
		m.syncBubbleData()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReloadMsg:
		m = m.withResult(fmt.Sprintf("reloaded %s", m.Path), m.reload())
		m.syncBubbleData()
		return m, nil
	case DueMsg:
		m.DueLog = append(m.DueLog, typed.Event)
		if len(m.DueLog) > maxDueLog {
			m.DueLog = m.DueLog[len(m.DueLog)-maxDueLog:]
		}
		label := "due"
		if typed.Event.DueAt.Before(m.now()) {
			label = "overdue"
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s (line %d)", label, typed.Event.Description, typed.Event.Line)}
		if m.scheduler != nil {
			return m, waitForDueCmd(m.scheduler.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) withResult(text string, err error) Model {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.LastError = nil
	m.Status = StatusBar{Text: text}
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	right := m.renderDetailPane()
	if p := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); p != "" {
		right += "\n\n" + p
	}
	if m.HelpVisible {
		right += "\n\n" + m.renderHelpView()
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dailycheck | %s | %d/%d checkboxes", m.Path, len(m.Visible), len(m.Entries)),
		LeftPane:     m.renderChecklistView(),
		RightPane:    right,
		StatusLine:   status,
		IsError:      m.Status.IsError,
		Notification: m.renderDueLog(),
		Footer: fmt.Sprintf("keys: %s/%s move | %s toggle | %s preview | %s filter | %s reload | %s cmd | %s help | %s quit",
			m.Keys.Down, m.Keys.Up, m.Keys.Toggle, m.Keys.Preview, m.Keys.Filter, m.Keys.Reload, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}
