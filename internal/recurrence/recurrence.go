package recurrence

import (
	"errors"
	"time"
)

var ErrRecurrenceDateWithoutReference = errors.New("recurrence: recurrence date requires a reference date")

// Recurrence pairs a rule with the day it was last anchored to and,
// optionally, the day the item is due.
type Recurrence struct {
	Rule           Rule
	ReferenceDate  *time.Time
	RecurrenceDate *time.Time
}

func NewRecurrence(rule Rule, referenceDate, recurrenceDate *time.Time) (Recurrence, error) {
	if recurrenceDate != nil && referenceDate == nil {
		return Recurrence{}, ErrRecurrenceDateWithoutReference
	}
	return Recurrence{Rule: rule, ReferenceDate: referenceDate, RecurrenceDate: recurrenceDate}, nil
}

// FromText parses text and anchors the rule at the start of the reference
// day, falling back to now's day.
func FromText(text string, referenceDate, recurrenceDate *time.Time, now time.Time) (Recurrence, error) {
	rule, err := ParseRule(text)
	if err != nil {
		return Recurrence{}, err
	}
	anchor := now
	if referenceDate != nil {
		anchor = *referenceDate
	}
	return NewRecurrence(rule.WithStart(StartOfDay(anchor)), referenceDate, recurrenceDate)
}
