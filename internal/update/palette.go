package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dailycheck/internal/palette"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := palette.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := palette.Execute(cmd, palette.Handlers{
		Toggle: func(a palette.ToggleArgs) (palette.Result, error) {
			text, err := m.toggleLine(a.Line)
			return palette.Result{Message: text}, err
		},
		Show: func(s palette.ShowArgs) (palette.Result, error) {
			m.Filter = FilterState{Filter: s.Filter, Tag: s.Tag}
			m.applyFilter()
			label := string(s.Filter)
			if s.Tag != "" {
				label += " " + s.Tag
			}
			return palette.Result{Message: fmt.Sprintf("showing %d checkbox(es): %s", len(m.Visible), label)}, nil
		},
		Preview: func(p palette.PreviewArgs) (palette.Result, error) {
			text, err := m.previewLine(p.Line, p.Count)
			if err == nil {
				m.selectLine(p.Line)
			}
			return palette.Result{Message: text}, err
		},
		Reload: func() (palette.Result, error) {
			if err := m.reload(); err != nil {
				return palette.Result{}, err
			}
			return palette.Result{Message: fmt.Sprintf("reloaded %s", m.Path)}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}

// selectLine moves the cursor to line if it is visible.
func (m *Model) selectLine(line int) {
	for i, e := range m.Visible {
		if e.Line == line {
			m.Cursor = i
			return
		}
	}
}
