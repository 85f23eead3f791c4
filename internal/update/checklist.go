package update

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/internal/document"
	"github.com/sandeepkv93/dailycheck/internal/palette"
	"github.com/sandeepkv93/dailycheck/internal/status"
	"github.com/sandeepkv93/dailycheck/internal/views"
)

var filterCycle = []palette.Filter{
	palette.FilterAll,
	palette.FilterOpen,
	palette.FilterDone,
	palette.FilterRecurring,
}

// reload re-reads the file and hands its due dates to the scheduler.
func (m *Model) reload() error {
	doc, err := document.Load(m.Path)
	if err != nil {
		return err
	}
	m.Entries = doc.Checkboxes(m.svc.Parser())
	m.Due = make(map[int]checklist.DueItem, len(m.Entries))
	for _, it := range m.svc.Upcoming(doc, 0) {
		m.Due[it.Line] = it
	}
	if m.Preview.Line > 0 {
		if _, ok := m.entryAt(m.Preview.Line); !ok {
			m.Preview = PreviewState{}
		}
	}
	m.applyFilter()

	if m.scheduler != nil {
		if err := m.scheduler.Replace(m.svc.DueEvents(doc)); err != nil {
			m.log.Warn().Err(err).Str("path", m.Path).Msg("schedule due checkboxes")
		}
	}
	return nil
}

func (m *Model) applyFilter() {
	m.Visible = nil
	for _, e := range m.Entries {
		if matchesFilter(e.Checkbox, m.Filter) {
			m.Visible = append(m.Visible, e)
		}
	}
	m.clampCursor()
}

func matchesFilter(cb checkbox.Checkbox, f FilterState) bool {
	if f.Tag != "" && !slices.Contains(cb.Tags, f.Tag) {
		return false
	}
	switch f.Filter {
	case palette.FilterOpen:
		return cb.Status.Type == status.TypeTodo || cb.Status.Type == status.TypeInProgress
	case palette.FilterDone:
		return cb.Status.IsCompleted()
	case palette.FilterRecurring:
		return cb.IsRecurring()
	default:
		return true
	}
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.clampCursor()
}

func (m *Model) cycleFilter() {
	idx := slices.Index(filterCycle, m.Filter.Filter)
	m.Filter.Filter = filterCycle[(idx+1)%len(filterCycle)]
	m.applyFilter()
	m.Status = StatusBar{Text: fmt.Sprintf("filter: %s (%d)", m.Filter.Filter, len(m.Visible))}
}

func (m Model) selected() (document.Entry, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return document.Entry{}, false
	}
	return m.Visible[m.Cursor], true
}

func (m Model) entryAt(line int) (document.Entry, bool) {
	for _, e := range m.Entries {
		if e.Line == line {
			return e, true
		}
	}
	return document.Entry{}, false
}

// toggleLine toggles one line on disk and keeps the cursor on the line that
// now carries the toggled checkbox.
func (m *Model) toggleLine(line int) (string, error) {
	res, err := m.svc.ToggleLine(m.ctx, m.Path, line)
	if err != nil {
		return "", err
	}
	if err := m.reload(); err != nil {
		return "", err
	}
	target := res.Line + len(res.Checkboxes) - 1
	for i, e := range m.Visible {
		if e.Line == target {
			m.Cursor = i
			break
		}
	}
	toggled := res.Toggled()
	msg := fmt.Sprintf("line %d: [%s] %s", res.Line, toggled.Status.Symbol, toggled.Description)
	if len(res.Checkboxes) > 1 {
		next := res.Checkboxes[0]
		if next.RecurrenceDate != nil {
			msg += fmt.Sprintf(" (next %s)", next.RecurrenceDate.Format("2006-01-02"))
		}
	}
	return msg, nil
}

func (m *Model) previewLine(line, count int) (string, error) {
	e, ok := m.entryAt(line)
	if !ok {
		return "", fmt.Errorf("line %d: %w", line, document.ErrNotCheckbox)
	}
	dates, err := m.svc.Preview(e.Checkbox, count)
	if err != nil {
		return "", err
	}
	m.Preview = PreviewState{Line: line, Dates: dates}
	return fmt.Sprintf("preview line %d: %d date(s)", line, len(dates)), nil
}

func (m *Model) syncBubbleData() {
	e, ok := m.selected()
	if !ok {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(views.RenderMarkdown(detailMarkdown(e, m.displayLine(e))))
	m.detailViewport.GotoTop()
}

// displayLine renders e with the display layout. The file keeps every field.
func (m Model) displayLine(e document.Entry) string {
	return m.display.Format(e.Checkbox)
}

func detailMarkdown(e document.Entry, shown string) string {
	cb := e.Checkbox
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s**\n\n", cb.Description))
	b.WriteString(fmt.Sprintf("`%s`\n\n", shown))
	b.WriteString(fmt.Sprintf("- status: %s `[%s]`\n", cb.Status.Name, cb.Status.Symbol))
	if cb.RecurrenceRule != nil {
		b.WriteString(fmt.Sprintf("- rule: %s\n", cb.RecurrenceRule.Text()))
	}
	if cb.RecurrenceDate != nil {
		b.WriteString(fmt.Sprintf("- due: %s\n", cb.RecurrenceDate.Format("2006-01-02")))
	}
	if cb.DoneDate != nil {
		b.WriteString(fmt.Sprintf("- done: %s\n", cb.DoneDate.Format("2006-01-02")))
	}
	if len(cb.Tags) > 0 {
		b.WriteString(fmt.Sprintf("- tags: %s\n", strings.Join(cb.Tags, " ")))
	}
	if cb.BlockLink != "" {
		b.WriteString(fmt.Sprintf("- block: %s\n", cb.BlockLink))
	}
	return b.String()
}

func (m Model) renderChecklistView() string {
	items := make([]views.ChecklistItemData, 0, len(m.Visible))
	for i, e := range m.Visible {
		item := views.ChecklistItemData{
			Line:     e.Line,
			Symbol:   e.Checkbox.Status.Symbol,
			Text:     e.Checkbox.Description,
			Done:     e.Checkbox.Status.IsCompleted(),
			Selected: i == m.Cursor,
		}
		if due, ok := m.Due[e.Line]; ok {
			item.Due = due.DueAt.Format("2006-01-02")
			item.Overdue = due.Overdue
		}
		items = append(items, item)
	}
	return views.RenderChecklistPanel(views.ChecklistPanelData{
		Path:   m.Path,
		Filter: string(m.Filter.Filter),
		Tag:    m.Filter.Tag,
		Items:  items,
	})
}

func (m Model) renderDetailPane() string {
	e, ok := m.selected()
	if !ok {
		return views.RenderDetailPane(views.DetailPaneData{})
	}
	data := views.DetailPaneData{Line: e.Line, MarkdownView: m.detailViewport.View()}
	if m.Preview.Line == e.Line {
		for _, d := range m.Preview.Dates {
			data.Preview = append(data.Preview, d.Format("2006-01-02 Mon"))
		}
	}
	return views.RenderDetailPane(data)
}

func (m Model) renderDueLog() string {
	items := make([]views.DueLogItemData, 0, len(m.DueLog))
	for _, ev := range m.DueLog {
		items = append(items, views.DueLogItemData{
			Path:        ev.Path,
			Line:        ev.Line,
			Description: ev.Description,
			Due:         ev.DueAt.Format("2006-01-02"),
		})
	}
	return views.RenderDueLog(items)
}
