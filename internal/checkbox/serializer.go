package checkbox

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/recurrence"
)

const (
	DoneDateSymbol       = "✅"
	RecurrenceSymbol     = "🔁"
	RecurrenceDateSymbol = "⏳"

	DateLayout = "2006-01-02"

	maxDeserializePasses = 20
)

var (
	doneDateRegex       = regexp.MustCompile(`✅ *(\d{4}-\d{2}-\d{2})$`)
	recurrenceRegex     = regexp.MustCompile(`(?i)🔁 ?([a-zA-Z0-9, !]+)$`)
	recurrenceDateRegex = regexp.MustCompile(`⏳ *(\d{4}-\d{2}-\d{2})$`)
)

type DiagnosticKind string

const (
	DiagnosticUnparseableRule DiagnosticKind = "unparseable_rule"
	DiagnosticInvalidDate     DiagnosticKind = "invalid_date"
)

// Diagnostic records a field marker that was recognized and removed from the
// description but whose value could not be read.
type Diagnostic struct {
	Kind  DiagnosticKind
	Field Component
	Text  string
	Err   error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %q: %v", d.Field, d.Text, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Details are the fields carried in the body of a checkbox line.
type Details struct {
	Description    string
	DoneDate       *time.Time
	RecurrenceRule *recurrence.Rule
	RecurrenceDate *time.Time
	Tags           []string
	Diagnostics    []Diagnostic
}

// Serializer converts between a checkbox body and its fields. Dates are read
// and written as calendar days in loc.
type Serializer struct {
	layout Layout
	loc    *time.Location
	log    zerolog.Logger
}

func NewSerializer(layout Layout, loc *time.Location, log zerolog.Logger) *Serializer {
	if loc == nil {
		loc = time.Local
	}
	return &Serializer{layout: layout, loc: loc, log: log}
}

func (s *Serializer) Layout() Layout {
	return s.layout
}

// Deserialize strips field markers from the end of body, in any order, until
// none is left or the pass limit is reached. Tags found at the end are put
// back on the description in their original order.
func (s *Serializer) Deserialize(body string) Details {
	var (
		d            Details
		trailingTags string
		description  = body
	)

	for pass := 0; pass < maxDeserializePasses; pass++ {
		matched := false

		if m := doneDateRegex.FindStringSubmatchIndex(description); m != nil {
			text := description[m[2]:m[3]]
			d.DoneDate = s.parseDate(&d, ComponentDoneDate, text)
			description = strings.TrimSpace(description[:m[0]])
			matched = true
		}

		if m := recurrenceRegex.FindStringSubmatchIndex(description); m != nil {
			text := strings.TrimSpace(description[m[2]:m[3]])
			rule, err := recurrence.ParseRule(text)
			if err != nil {
				d.RecurrenceRule = nil
				s.diagnose(&d, Diagnostic{Kind: DiagnosticUnparseableRule, Field: ComponentRecurrenceRule, Text: text, Err: err})
			} else {
				d.RecurrenceRule = &rule
			}
			description = strings.TrimSpace(description[:m[0]])
			matched = true
		}

		if m := recurrenceDateRegex.FindStringSubmatchIndex(description); m != nil {
			text := description[m[2]:m[3]]
			d.RecurrenceDate = s.parseDate(&d, ComponentRecurrenceDate, text)
			description = strings.TrimSpace(description[:m[0]])
			matched = true
		}

		if m := trailingHashTagRegex.FindStringIndex(description); m != nil {
			tag := strings.TrimSpace(description[m[0]:m[1]])
			description = strings.TrimSpace(description[:m[0]])
			if trailingTags == "" {
				trailingTags = tag
			} else {
				trailingTags = tag + " " + trailingTags
			}
			matched = true
		}

		if !matched {
			break
		}
	}

	if trailingTags != "" {
		if description == "" {
			description = trailingTags
		} else {
			description += " " + trailingTags
		}
	}
	d.Description = description
	d.Tags = ExtractHashtags(description)
	return d
}

func (s *Serializer) parseDate(d *Details, field Component, text string) *time.Time {
	t, err := time.ParseInLocation(DateLayout, text, s.loc)
	if err != nil {
		s.diagnose(d, Diagnostic{Kind: DiagnosticInvalidDate, Field: field, Text: text, Err: err})
		return nil
	}
	return &t
}

func (s *Serializer) diagnose(d *Details, diag Diagnostic) {
	d.Diagnostics = append(d.Diagnostics, diag)
	s.log.Warn().
		Str("kind", string(diag.Kind)).
		Str("field", string(diag.Field)).
		Str("text", diag.Text).
		Err(diag.Err).
		Msg("dropping unreadable checkbox field")
}

// Serialize renders the body of cb following the serializer's layout.
func (s *Serializer) Serialize(cb Checkbox) string {
	var b strings.Builder
	for _, c := range s.layout.Shown {
		b.WriteString(s.component(cb, c))
	}
	return b.String()
}

func (s *Serializer) component(cb Checkbox, c Component) string {
	short := s.layout.Options.ShortMode
	switch c {
	case ComponentDescription:
		return cb.Description
	case ComponentRecurrenceRule:
		if cb.RecurrenceRule == nil {
			return ""
		}
		return field(RecurrenceSymbol, cb.RecurrenceRule.Text(), short)
	case ComponentDoneDate:
		if cb.DoneDate == nil {
			return ""
		}
		return field(DoneDateSymbol, cb.DoneDate.In(s.loc).Format(DateLayout), short)
	case ComponentRecurrenceDate:
		if cb.RecurrenceDate == nil {
			return ""
		}
		return field(RecurrenceDateSymbol, cb.RecurrenceDate.In(s.loc).Format(DateLayout), short)
	case ComponentBlockLink:
		if cb.BlockLink == "" {
			return ""
		}
		return " " + cb.BlockLink
	default:
		return ""
	}
}

func field(symbol, value string, short bool) string {
	if short {
		return " " + symbol
	}
	return " " + symbol + " " + value
}
