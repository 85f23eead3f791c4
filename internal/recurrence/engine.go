package recurrence

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultOffsetHours = 9
	DefaultMaxRetries  = 366
)

var ErrRecurrenceDiverged = errors.New("recurrence: skip correction did not converge")

var (
	monthlyPattern = regexp.MustCompile(`every( \d+)? month(s)?`)
	yearlyPattern  = regexp.MustCompile(`every( \d+)? year(s)?`)
)

// Engine computes next occurrence dates. Calendar results are shifted back by
// a fixed hour offset and reported in the matching fixed zone. Monthly and
// yearly rules without an "on" clause are corrected when the calendar skips
// a short month or a leap day.
type Engine struct {
	cal        Calendar
	offset     time.Duration
	loc        *time.Location
	maxRetries int
	log        zerolog.Logger
}

type Option func(*Engine)

func WithCalendar(cal Calendar) Option {
	return func(e *Engine) {
		if cal != nil {
			e.cal = cal
		}
	}
}

func WithOffsetHours(hours int) Option {
	return func(e *Engine) {
		e.offset = time.Duration(hours) * time.Hour
	}
}

func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cal:        RRuleCalendar{},
		offset:     DefaultOffsetHours * time.Hour,
		maxRetries: DefaultMaxRetries,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.loc = time.FixedZone(zoneName(e.offset), int(e.offset/time.Second))
	return e
}

func zoneName(offset time.Duration) string {
	h := int(offset / time.Hour)
	if h >= 0 {
		return fmt.Sprintf("UTC+%d", h)
	}
	return fmt.Sprintf("UTC%d", h)
}

// Location is the fixed zone dates are computed and rendered in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Next returns the first occurrence of rule strictly after after, or the zero
// time when the rule has none.
func (e *Engine) Next(rule Rule, after time.Time) (time.Time, error) {
	after = after.In(e.loc)
	if rule.Start.IsZero() {
		rule = rule.WithStart(StartOfDay(after))
	} else {
		rule = rule.WithStart(rule.Start.In(e.loc))
	}

	candidate, err := e.after(rule, after)
	if err != nil || candidate.IsZero() {
		return candidate, err
	}

	text := rule.Text()
	// An "on" clause names the day, so skipping to the next month or year
	// that has it is the intended result.
	if strings.Contains(text, " on ") {
		return candidate, nil
	}
	if n, ok := matchInterval(monthlyPattern, text); ok {
		return e.correct(rule, after, candidate, n, monthDistance)
	}
	if n, ok := matchInterval(yearlyPattern, text); ok {
		return e.correct(rule, after, candidate, n, yearDistance)
	}
	return candidate, nil
}

func (e *Engine) after(rule Rule, after time.Time) (time.Time, error) {
	next, err := e.cal.After(rule, after)
	if err != nil {
		return time.Time{}, err
	}
	if next.IsZero() {
		return next, nil
	}
	return next.Add(-e.offset).In(e.loc), nil
}

// correct rewinds the anchor one day at a time until the candidate lands no
// further than n periods from after.
func (e *Engine) correct(rule Rule, after, candidate time.Time, n int, distance func(a, b time.Time) int) (time.Time, error) {
	cursor := after
	for i := 0; distance(after, candidate) > n; i++ {
		if i >= e.maxRetries {
			return time.Time{}, fmt.Errorf("%w: %q after %s (%d retries)", ErrRecurrenceDiverged, rule.Text(), after.Format(time.RFC3339), e.maxRetries)
		}
		cursor = StartOfDay(cursor.AddDate(0, 0, -1))
		next, err := e.after(rule.WithStart(cursor), cursor)
		if err != nil || next.IsZero() {
			return next, err
		}
		e.log.Debug().
			Str("rule", rule.Text()).
			Time("skipped", candidate).
			Time("retry", next).
			Msg("correcting skipped period")
		candidate = next
	}
	return candidate, nil
}

func matchInterval(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 1, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(m[1]))
	if err != nil {
		return 0, false
	}
	return n, true
}

func monthDistance(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func yearDistance(a, b time.Time) int {
	return b.Year() - a.Year()
}

// NextReferenceDate is the next occurrence after the end of the reference
// day, or after the end of now's day when rec has no reference date.
func (e *Engine) NextReferenceDate(rec Recurrence, now time.Time) (time.Time, error) {
	ref := now
	if rec.ReferenceDate != nil {
		ref = *rec.ReferenceDate
	}
	return e.Next(rec.Rule, EndOfDay(ref.In(e.loc)))
}

// NextOccurrence advances rec by one occurrence, carrying the gap between the
// reference and recurrence dates forward in whole days. It returns nil when
// the rule is exhausted.
func (e *Engine) NextOccurrence(rec Recurrence, now time.Time) (*Recurrence, error) {
	next, err := e.NextReferenceDate(rec, now)
	if err != nil {
		return nil, err
	}
	if next.IsZero() {
		return nil, nil
	}

	out := &Recurrence{Rule: rec.Rule.clone(), ReferenceDate: &next}
	if rec.ReferenceDate != nil && rec.RecurrenceDate != nil {
		days := math.Round(rec.RecurrenceDate.Sub(*rec.ReferenceDate).Hours() / 24)
		due := next.AddDate(0, 0, int(days))
		out.RecurrenceDate = &due
	}
	return out, nil
}

// Preview lists up to count corrected occurrences after from. A rule without
// a start is anchored at the start of from's day for the whole series.
func (e *Engine) Preview(rule Rule, from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	from = from.In(e.loc)
	if rule.Start.IsZero() {
		rule = rule.WithStart(StartOfDay(from))
	}

	out := make([]time.Time, 0, count)
	cursor := from
	for len(out) < count {
		next, err := e.Next(rule, cursor)
		if err != nil {
			return nil, err
		}
		if next.IsZero() {
			break
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}
