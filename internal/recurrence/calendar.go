package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Calendar enumerates rule occurrences. Implementations work in a floating
// frame: the wall clock of the inputs is read as if it were UTC and the
// returned occurrence carries its wall clock in UTC. A zero time means the
// rule has no occurrence after the given instant.
type Calendar interface {
	After(rule Rule, after time.Time) (time.Time, error)
}

// RRuleCalendar is the Calendar backed by RFC 5545 rule expansion.
type RRuleCalendar struct{}

func (RRuleCalendar) After(rule Rule, after time.Time) (time.Time, error) {
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}
	start := rule.Start
	if start.IsZero() {
		start = StartOfDay(after)
	}

	opt, err := rruleOptions(rule, floating(start))
	if err != nil {
		return time.Time{}, err
	}
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("recurrence: build rule %q: %w", rule.Text(), err)
	}
	return rr.After(floating(after), false), nil
}

func rruleOptions(rule Rule, dtstart time.Time) (rrule.ROption, error) {
	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: rule.Interval,
	}
	switch rule.Freq {
	case FreqDaily:
		opt.Freq = rrule.DAILY
	case FreqWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range rule.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case FreqMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = append(opt.Bymonthday, rule.MonthDays...)
	case FreqYearly:
		opt.Freq = rrule.YEARLY
		if rule.Month != 0 {
			opt.Bymonth = []int{int(rule.Month)}
			opt.Bymonthday = append(opt.Bymonthday, rule.MonthDays...)
		}
	default:
		return rrule.ROption{}, fmt.Errorf("%w: %q", ErrInvalidFreq, rule.Freq)
	}
	return opt, nil
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

func floating(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
