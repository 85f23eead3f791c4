package checkbox

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

type fixture struct {
	registry *status.Registry
	parser   *Parser
	toggler  *Toggler
}

func newFixture(t *testing.T, now time.Time, opts ...recurrence.Option) fixture {
	t.Helper()
	registry := status.NewRegistry()
	engine := recurrence.NewEngine(opts...)
	serializer := NewSerializer(DefaultLayout(), engine.Location(), zerolog.Nop())
	return fixture{
		registry: registry,
		parser:   NewParser(registry, serializer),
		toggler:  NewToggler(registry, engine, WithClock(func() time.Time { return now })),
	}
}

func (f fixture) parse(t *testing.T, line string) Checkbox {
	t.Helper()
	cb, ok := f.parser.Parse(line)
	require.True(t, ok, "not a checkbox: %q", line)
	return cb
}

func TestToggleRecurringEndToEnd(t *testing.T) {
	now := time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc)
	f := newFixture(t, now)
	cb := f.parse(t, "- [ ] Buy milk 🔁 every month #errand")

	got, err := f.toggler.ToggleWithNext(cb)
	require.NoError(t, err)
	require.Len(t, got, 2)

	next, toggled := got[0], got[1]
	assert.Equal(t, status.TypeDone, toggled.Status.Type)
	require.NotNil(t, toggled.DoneDate)
	assert.Equal(t, "2024-03-31", toggled.DoneDate.Format(DateLayout))
	require.NotNil(t, toggled.RecurrenceDate)
	assert.Equal(t, "2024-04-30", toggled.RecurrenceDate.Format(DateLayout))

	assert.Equal(t, "- [x] Buy milk #errand 🔁 every month ✅ 2024-03-31 ⏳ 2024-04-30", f.parser.Format(toggled))
	assert.Equal(t, "- [ ] Buy milk #errand 🔁 every month ⏳ 2024-04-30", f.parser.Format(next))
	assert.Equal(t, status.TypeTodo, next.Status.Type)
	assert.Nil(t, next.DoneDate)
}

func TestToggleWeekdayRule(t *testing.T) {
	friday := time.Date(2024, 3, 29, 18, 0, 0, 0, testLoc)
	f := newFixture(t, friday)

	got, err := f.toggler.Toggle(f.parse(t, "- [ ] Standup 🔁 every weekday"))
	require.NoError(t, err)
	require.NotNil(t, got.RecurrenceDate)
	assert.Equal(t, "2024-04-01", got.RecurrenceDate.Format(DateLayout))
}

func TestToggleNonCompletingClearsDates(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc))

	tests := []struct {
		name     string
		line     string
		wantLine string
		wantType status.Type
	}{
		{
			name:     "done back to todo",
			line:     "- [x] Pay rent 🔁 every month ✅ 2024-03-01 ⏳ 2024-04-01",
			wantLine: "- [ ] Pay rent 🔁 every month",
			wantType: status.TypeTodo,
		},
		{
			name:     "cancelled to todo",
			line:     "- [-] Skip ✅ 2024-01-01",
			wantLine: "- [ ] Skip",
			wantType: status.TypeTodo,
		},
		{
			name:     "non recurring completion",
			line:     "* [ ] One off #once",
			wantLine: "* [x] One off #once",
			wantType: status.TypeDone,
		},
		{
			name:     "in progress",
			line:     "1. [/] Draft ^d1",
			wantLine: "1. [x] Draft ^d1",
			wantType: status.TypeDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.toggler.Toggle(f.parse(t, tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Status.Type)
			assert.Nil(t, got.DoneDate)
			assert.Nil(t, got.RecurrenceDate)
			assert.Equal(t, tt.wantLine, f.parser.Format(got))

			all, err := f.toggler.ToggleWithNext(f.parse(t, tt.line))
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestUnknownSymbolFidelity(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc))
	line := "- [~] Maybe later"

	cb := f.parse(t, line)
	assert.Equal(t, status.Unknown("~"), cb.Status)
	assert.Equal(t, line, f.parser.Format(cb))
	assert.Equal(t, line, cb.OriginalMarkdown)

	got, err := f.toggler.Toggle(cb)
	require.NoError(t, err)
	assert.Equal(t, status.Done(), got.Status)
}

func TestToggleIdenticalStatusReturnsInput(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc))
	f.registry.Add(status.Status{Symbol: "!", Name: "Pinned", NextSymbol: "!", Type: status.TypeNonTask})

	cb := f.parse(t, "- [!] Keep me 🔁 every day ✅ 2024-03-01")
	got, err := f.toggler.Toggle(cb)
	require.NoError(t, err)
	assert.Equal(t, cb, got)
}

func TestToggleDoesNotShareState(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc))
	cb := f.parse(t, "- [ ] Tagged #a #b 🔁 every day")

	got, err := f.toggler.Toggle(cb)
	require.NoError(t, err)
	got.Tags[0] = "#changed"
	got.RecurrenceRule.Interval = 9

	assert.Equal(t, []string{"#a", "#b"}, cb.Tags)
	assert.Equal(t, 1, cb.RecurrenceRule.Interval)
	assert.Equal(t, status.Todo(), cb.Status)
}

type runawayCalendar struct{}

func (runawayCalendar) After(_ recurrence.Rule, after time.Time) (time.Time, error) {
	return after.AddDate(1, 0, 0), nil
}

func TestToggleDivergenceFails(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 31, 9, 0, 0, 0, testLoc),
		recurrence.WithCalendar(runawayCalendar{}), recurrence.WithMaxRetries(3))

	_, err := f.toggler.Toggle(f.parse(t, "- [ ] Rent 🔁 every month"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, recurrence.ErrRecurrenceDiverged))
}
