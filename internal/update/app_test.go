package update

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/internal/palette"
	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/scheduler"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

const sampleDoc = "# Daily\n- [ ] Buy milk 🔁 every month #errand\n- [ ] One off #home\n- [x] Done thing\n"

var testNow = time.Date(2024, 3, 31, 9, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))

func newTestService(now time.Time) *checklist.Service {
	registry := status.NewRegistry()
	engine := recurrence.NewEngine()
	parser := checkbox.NewParser(registry, checkbox.NewSerializer(checkbox.DefaultLayout(), engine.Location(), zerolog.Nop()))
	clock := func() time.Time { return now }
	toggler := checkbox.NewToggler(registry, engine, checkbox.WithClock(clock))
	return checklist.NewService(parser, toggler, engine, checklist.WithClock(clock), checklist.WithInsertNext(true))
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daily.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func newTestModel(t *testing.T, content string) Model {
	t.Helper()
	m, err := NewModel(Options{
		Path:    writeDoc(t, content),
		Service: newTestService(testNow),
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func runPalette(t *testing.T, m Model, input string) Model {
	t.Helper()
	m = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatalf("expected palette to be active")
	}
	m = press(t, m, input, "enter")
	if m.Palette.Active {
		t.Fatalf("expected palette to close after enter")
	}
	return m
}

func TestNewModelRequiresService(t *testing.T) {
	_, err := NewModel(Options{Path: "daily.md"})
	if !errors.Is(err, ErrNoService) {
		t.Fatalf("expected ErrNoService, got %v", err)
	}
}

func TestNewModelMissingFile(t *testing.T) {
	_, err := NewModel(Options{
		Path:    filepath.Join(t.TempDir(), "missing.md"),
		Service: newTestService(testNow),
	})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	if len(m.Entries) != 3 || len(m.Visible) != 3 {
		t.Fatalf("expected 3 checkboxes, got entries=%d visible=%d", len(m.Entries), len(m.Visible))
	}
	if m.Filter.Filter != palette.FilterAll {
		t.Fatalf("expected filter all, got %q", m.Filter.Filter)
	}
	if m.Cursor != 0 || m.Visible[0].Line != 2 {
		t.Fatalf("expected cursor on line 2, got cursor=%d line=%d", m.Cursor, m.Visible[0].Line)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Init() != nil {
		t.Fatalf("expected nil init cmd without scheduler")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = press(t, m, "j", "j", "j", "j")
	if m.Cursor != 2 {
		t.Fatalf("expected cursor clamped to 2, got %d", m.Cursor)
	}
	m = press(t, m, "k", "k", "k")
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.Cursor)
	}
}

func TestToggleRecurringInsertsNextOccurrence(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = press(t, m, "x")
	if m.Status.IsError {
		t.Fatalf("unexpected error status: %s", m.Status.Text)
	}
	if !strings.Contains(m.Status.Text, "next 2024-04-30") {
		t.Fatalf("expected next date in status, got %q", m.Status.Text)
	}

	raw, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	lines := strings.Split(string(raw), "\n")
	if lines[1] != "- [ ] Buy milk #errand 🔁 every month ⏳ 2024-04-30" {
		t.Fatalf("unexpected next occurrence line: %q", lines[1])
	}
	if lines[2] != "- [x] Buy milk #errand 🔁 every month ✅ 2024-03-31 ⏳ 2024-04-30" {
		t.Fatalf("unexpected completed line: %q", lines[2])
	}

	if len(m.Entries) != 4 {
		t.Fatalf("expected 4 checkboxes after toggle, got %d", len(m.Entries))
	}
	sel, ok := m.selected()
	if !ok || sel.Line != 3 {
		t.Fatalf("expected cursor on completed line 3, got %+v ok=%v", sel.Line, ok)
	}
	if due, ok := m.Due[2]; !ok || due.DueAt.Format("2006-01-02") != "2024-04-30" {
		t.Fatalf("expected line 2 due 2024-04-30, got %+v ok=%v", due, ok)
	}
}

func TestShortLayoutOnlyChangesDisplay(t *testing.T) {
	engine := recurrence.NewEngine()
	short := checkbox.NewSerializer(checkbox.NewLayout(checkbox.LayoutOptions{ShortMode: true}), engine.Location(), zerolog.Nop())
	m, err := NewModel(Options{
		Path:    writeDoc(t, sampleDoc),
		Service: newTestService(testNow),
		Display: checkbox.NewParser(status.NewRegistry(), short),
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m = press(t, m, "x")

	raw, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	lines := strings.Split(string(raw), "\n")
	if lines[2] != "- [x] Buy milk #errand 🔁 every month ✅ 2024-03-31 ⏳ 2024-04-30" {
		t.Fatalf("file line lost fields: %q", lines[2])
	}
	sel, ok := m.selected()
	if !ok {
		t.Fatalf("expected a selection")
	}
	if got := m.displayLine(sel); got != "- [x] Buy milk #errand 🔁 ✅ ⏳" {
		t.Fatalf("unexpected display line: %q", got)
	}
}

func TestFilterCycle(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	want := []struct {
		filter  palette.Filter
		visible int
	}{
		{palette.FilterOpen, 2},
		{palette.FilterDone, 1},
		{palette.FilterRecurring, 1},
		{palette.FilterAll, 3},
	}
	for _, w := range want {
		m = press(t, m, "f")
		if m.Filter.Filter != w.filter {
			t.Fatalf("expected filter %q, got %q", w.filter, m.Filter.Filter)
		}
		if len(m.Visible) != w.visible {
			t.Fatalf("filter %q: expected %d visible, got %d", w.filter, w.visible, len(m.Visible))
		}
	}
}

func TestPaletteShowWithTag(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = runPalette(t, m, "show open tag:home")
	if m.Filter.Filter != palette.FilterOpen || m.Filter.Tag != "#home" {
		t.Fatalf("unexpected filter: %+v", m.Filter)
	}
	if len(m.Visible) != 1 || m.Visible[0].Line != 3 {
		t.Fatalf("expected only line 3 visible, got %+v", m.Visible)
	}
}

func TestPalettePreview(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = runPalette(t, m, "preview 2 2")
	if m.Status.IsError {
		t.Fatalf("unexpected error status: %s", m.Status.Text)
	}
	if m.Preview.Line != 2 || len(m.Preview.Dates) != 2 {
		t.Fatalf("unexpected preview: %+v", m.Preview)
	}
	if got := m.Preview.Dates[0].Format("2006-01-02"); got != "2024-04-30" {
		t.Fatalf("expected first preview 2024-04-30, got %s", got)
	}
	if got := m.Preview.Dates[1].Format("2006-01-02"); got != "2024-05-31" {
		t.Fatalf("expected second preview 2024-05-31, got %s", got)
	}
	if !strings.Contains(m.View(), "2024-04-30") {
		t.Fatalf("expected preview dates in view")
	}
}

func TestPalettePreviewNonRecurring(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = runPalette(t, m, "preview 3")
	if !m.Status.IsError || !errors.Is(m.LastError, checklist.ErrNotRecurring) {
		t.Fatalf("expected ErrNotRecurring, got %v", m.LastError)
	}
}

func TestPaletteToggleNonCheckboxLeavesFile(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = runPalette(t, m, "toggle 1")
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %q", m.Status.Text)
	}
	raw, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	if string(raw) != sampleDoc {
		t.Fatalf("expected file unchanged, got %q", string(raw))
	}
}

func TestPaletteErrors(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = runPalette(t, m, "snooze all")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, string(palette.ErrCodeUnknownCommand)) {
		t.Fatalf("expected unknown command error, got %q", m.Status.Text)
	}

	m = press(t, m, "/", "toggle", "esc")
	if m.Palette.Active {
		t.Fatalf("expected esc to close palette")
	}
	if m.Status.Text != "command palette closed" {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	if err := os.WriteFile(m.Path, []byte(sampleDoc+"- [ ] Added later\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	m = press(t, m, "r")
	if len(m.Entries) != 4 {
		t.Fatalf("expected 4 checkboxes after reload, got %d", len(m.Entries))
	}

	updated, _ := m.Update(ReloadMsg{})
	next := updated.(Model)
	if len(next.Entries) != 4 {
		t.Fatalf("expected reload message to keep 4 checkboxes, got %d", len(next.Entries))
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if !next.Status.IsError || next.LastError == nil {
		t.Fatalf("expected error status, got %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %q", next.Status.Text)
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	m = press(t, m, "?")
	if !m.HelpVisible {
		t.Fatalf("expected help visible")
	}
	if !strings.Contains(m.View(), "help:") {
		t.Fatalf("expected help panel in view")
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
}

func TestDueMsgAppendsLog(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	ev := scheduler.DueEvent{ID: "a:2", Path: m.Path, Line: 2, Description: "Buy milk", DueAt: testNow.Add(-time.Hour)}
	updated, cmd := m.Update(DueMsg{Event: ev})
	next := updated.(Model)
	if len(next.DueLog) != 1 {
		t.Fatalf("expected one due event, got %d", len(next.DueLog))
	}
	if !strings.HasPrefix(next.Status.Text, "overdue: Buy milk") {
		t.Fatalf("unexpected status: %q", next.Status.Text)
	}
	if cmd != nil {
		t.Fatalf("expected nil cmd without scheduler")
	}

	for i := 0; i < maxDueLog+5; i++ {
		updated, _ = next.Update(DueMsg{Event: ev})
		next = updated.(Model)
	}
	if len(next.DueLog) != maxDueLog {
		t.Fatalf("expected due log capped at %d, got %d", maxDueLog, len(next.DueLog))
	}
}

func TestSchedulerReceivesOverdueCheckbox(t *testing.T) {
	content := sampleDoc + "- [ ] Water plants 🔁 every week ⏳ 2024-03-30\n"
	engine := scheduler.NewEngine(4, scheduler.WithClock(func() time.Time { return testNow }))
	m, err := NewModel(Options{
		Path:      writeDoc(t, content),
		Service:   newTestService(testNow),
		Scheduler: engine,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected 1 pending event, got %d", engine.Pending())
	}
	if due, ok := m.Due[5]; !ok || !due.Overdue {
		t.Fatalf("expected line 5 overdue, got %+v ok=%v", due, ok)
	}

	engine.Start()
	defer engine.Stop()

	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("expected init cmd with scheduler")
	}
	got := make(chan tea.Msg, 1)
	go func() { got <- cmd() }()
	select {
	case msg := <-got:
		due, ok := msg.(DueMsg)
		if !ok || due.Event.Line != 5 {
			t.Fatalf("unexpected message: %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for due event")
	}
}

func TestViewRendersChecklist(t *testing.T) {
	m := newTestModel(t, sampleDoc)
	out := m.View()
	for _, want := range []string{"dailycheck", "Buy milk", "One off", "filter: all"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}
