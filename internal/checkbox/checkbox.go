package checkbox

import (
	"slices"
	"time"

	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

// Checkbox is one parsed checkbox line. It is a value: the With helpers and
// the toggler return copies and never share slices or pointers with their
// input.
type Checkbox struct {
	Indentation      string
	ListMarker       string
	Status           status.Status
	Description      string
	DoneDate         *time.Time
	RecurrenceRule   *recurrence.Rule
	RecurrenceDate   *time.Time
	Tags             []string
	BlockLink        string
	OriginalMarkdown string
}

func (c Checkbox) IsRecurring() bool {
	return c.RecurrenceRule != nil
}

func (c Checkbox) WithStatus(s status.Status) Checkbox {
	out := c.clone()
	out.Status = s
	return out
}

func (c Checkbox) WithDoneDate(t *time.Time) Checkbox {
	out := c.clone()
	out.DoneDate = copyTime(t)
	return out
}

func (c Checkbox) WithRecurrenceDate(t *time.Time) Checkbox {
	out := c.clone()
	out.RecurrenceDate = copyTime(t)
	return out
}

func (c Checkbox) clone() Checkbox {
	out := c
	out.Tags = slices.Clone(c.Tags)
	out.DoneDate = copyTime(c.DoneDate)
	out.RecurrenceDate = copyTime(c.RecurrenceDate)
	if c.RecurrenceRule != nil {
		rule := c.RecurrenceRule.WithStart(c.RecurrenceRule.Start)
		out.RecurrenceRule = &rule
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
