// Package recurrence parses recurrence rule text and computes next occurrence
// dates, correcting the months and years a plain calendar expansion skips.
package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// LastDay in Rule.MonthDays selects the final day of the month.
const LastDay = -1

var (
	ErrUnparseableRule = errors.New("recurrence: unparseable rule text")
	ErrInvalidInterval = errors.New("recurrence: invalid interval")
	ErrInvalidFreq     = errors.New("recurrence: invalid frequency")
)

func (f Frequency) IsValid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return true
	default:
		return false
	}
}

// Rule is a recurrence rule in the shape the text grammar can express, for
// example "every 2 weeks on Monday and Friday" or "every month on the last day".
// Start anchors the series; a zero Start is anchored by the engine at the start
// of the day being searched from.
type Rule struct {
	Freq      Frequency
	Interval  int
	Weekdays  []time.Weekday
	MonthDays []int
	Month     time.Month
	WhenDone  bool
	Start     time.Time
}

func (r Rule) Validate() error {
	if !r.Freq.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFreq, r.Freq)
	}
	if r.Interval <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Interval)
	}
	for _, d := range r.MonthDays {
		if d != LastDay && (d < 1 || d > 31) {
			return fmt.Errorf("recurrence: invalid day of month %d", d)
		}
	}
	if r.Freq == FreqYearly && r.Month != 0 && len(r.MonthDays) != 1 {
		return errors.New("recurrence: yearly rule with a month needs exactly one day")
	}
	return nil
}

// WithStart returns a copy of r anchored at start.
func (r Rule) WithStart(start time.Time) Rule {
	out := r.clone()
	out.Start = start
	return out
}

// Equal compares everything except Start.
func (r Rule) Equal(other Rule) bool {
	return r.Freq == other.Freq &&
		r.Interval == other.Interval &&
		r.Month == other.Month &&
		r.WhenDone == other.WhenDone &&
		slices.Equal(r.Weekdays, other.Weekdays) &&
		slices.Equal(r.MonthDays, other.MonthDays)
}

func (r Rule) clone() Rule {
	out := r
	out.Weekdays = slices.Clone(r.Weekdays)
	out.MonthDays = slices.Clone(r.MonthDays)
	return out
}

func (r Rule) String() string {
	return r.Text()
}

// Text renders the rule in the same grammar ParseRule reads.
func (r Rule) Text() string {
	var b strings.Builder
	switch r.Freq {
	case FreqDaily:
		b.WriteString(every(r.Interval, "day"))
	case FreqWeekly:
		if r.Interval <= 1 && isWorkweek(r.Weekdays) {
			b.WriteString("every weekday")
			break
		}
		b.WriteString(every(r.Interval, "week"))
		if len(r.Weekdays) > 0 {
			names := make([]string, 0, len(r.Weekdays))
			for _, d := range r.Weekdays {
				names = append(names, d.String())
			}
			b.WriteString(" on ")
			b.WriteString(joinList(names))
		}
	case FreqMonthly:
		b.WriteString(every(r.Interval, "month"))
		if len(r.MonthDays) > 0 {
			days := make([]string, 0, len(r.MonthDays))
			for _, d := range r.MonthDays {
				days = append(days, ordinal(d))
			}
			b.WriteString(" on the ")
			b.WriteString(joinList(days))
		}
	case FreqYearly:
		b.WriteString(every(r.Interval, "year"))
		if r.Month != 0 && len(r.MonthDays) == 1 {
			fmt.Fprintf(&b, " on %s %d", r.Month, r.MonthDays[0])
		}
	default:
		return ""
	}
	if r.WhenDone {
		b.WriteString(" when done")
	}
	return b.String()
}

func every(interval int, unit string) string {
	if interval <= 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", interval, unit)
}

func ordinal(day int) string {
	if day == LastDay {
		return "last day"
	}
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(day) + suffix
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

var workweek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func isWorkweek(days []time.Weekday) bool {
	return slices.Equal(days, workweek)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

func parseWeekday(word string) (time.Weekday, bool) {
	if d, ok := weekdayNames[word]; ok {
		return d, true
	}
	d, ok := weekdayNames[strings.TrimSuffix(word, "s")]
	return d, ok
}

// ParseRule reads the rule grammar rendered by Rule.Text. Matching is case
// insensitive and list items may be separated by commas or "and".
func ParseRule(text string) (Rule, error) {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(text, ",", " ")))
	fail := func() (Rule, error) {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnparseableRule, strings.TrimSpace(text))
	}

	rule := Rule{Interval: 1}
	if n := len(words); n >= 2 && words[n-2] == "when" && words[n-1] == "done" {
		rule.WhenDone = true
		words = words[:n-2]
	}
	if len(words) < 2 || words[0] != "every" {
		return fail()
	}
	words = words[1:]

	if n, err := strconv.Atoi(words[0]); err == nil {
		if n <= 0 || len(words) < 2 {
			return fail()
		}
		rule.Interval = n
		words = words[1:]
	}

	unit, rest := words[0], words[1:]
	switch unit {
	case "day", "days":
		rule.Freq = FreqDaily
	case "week", "weeks":
		rule.Freq = FreqWeekly
	case "weekday":
		if rule.Interval != 1 || len(rest) > 0 {
			return fail()
		}
		rule.Freq = FreqWeekly
		rule.Weekdays = slices.Clone(workweek)
		return rule, nil
	case "month", "months":
		rule.Freq = FreqMonthly
	case "year", "years":
		rule.Freq = FreqYearly
	default:
		if _, ok := parseWeekday(unit); !ok {
			return fail()
		}
		days, ok := parseWeekdays(words)
		if !ok {
			return fail()
		}
		rule.Freq = FreqWeekly
		rule.Weekdays = days
		return rule, nil
	}

	if len(rest) == 0 {
		return rule, nil
	}
	if rest[0] != "on" || len(rest) < 2 {
		return fail()
	}
	rest = rest[1:]

	var ok bool
	switch rule.Freq {
	case FreqWeekly:
		rule.Weekdays, ok = parseWeekdays(rest)
	case FreqMonthly:
		rule.MonthDays, ok = parseMonthDays(rest)
	case FreqYearly:
		rule.Month, rule.MonthDays, ok = parseMonthAndDay(rest)
	}
	if !ok {
		return fail()
	}
	return rule, nil
}

func parseWeekdays(words []string) ([]time.Weekday, bool) {
	var days []time.Weekday
	for _, w := range words {
		if w == "and" {
			continue
		}
		d, ok := parseWeekday(w)
		if !ok {
			return nil, false
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	return days, len(days) > 0
}

func parseMonthDays(words []string) ([]int, bool) {
	var days []int
	for i, w := range words {
		switch w {
		case "the", "and":
			continue
		case "day":
			if i == 0 || words[i-1] != "last" {
				return nil, false
			}
			continue
		case "last":
			if !slices.Contains(days, LastDay) {
				days = append(days, LastDay)
			}
			continue
		}
		d, ok := parseDayNumber(w)
		if !ok {
			return nil, false
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	return days, len(days) > 0
}

func parseMonthAndDay(words []string) (time.Month, []int, bool) {
	if len(words) != 2 {
		return 0, nil, false
	}
	m, ok := monthNames[words[0]]
	if !ok {
		return 0, nil, false
	}
	d, ok := parseDayNumber(words[1])
	if !ok {
		return 0, nil, false
	}
	return m, []int{d}, true
}

func parseDayNumber(word string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(word, suffix) {
			word = strings.TrimSuffix(word, suffix)
			break
		}
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}
