package checkbox

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

// Toggler moves checkboxes to their next status and stamps completion and
// next occurrence dates on recurring items.
type Toggler struct {
	registry *status.Registry
	engine   *recurrence.Engine
	now      func() time.Time
}

type ToggleOption func(*Toggler)

func WithClock(now func() time.Time) ToggleOption {
	return func(t *Toggler) {
		if now != nil {
			t.now = now
		}
	}
}

func NewToggler(registry *status.Registry, engine *recurrence.Engine, opts ...ToggleOption) *Toggler {
	t := &Toggler{registry: registry, engine: engine, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Toggler) Toggle(cb Checkbox) (Checkbox, error) {
	next := t.registry.NextOrCreate(cb.Status)
	return t.apply(cb, next)
}

func (t *Toggler) apply(cb Checkbox, next status.Status) (Checkbox, error) {
	if next.Identical(cb.Status) {
		return cb, nil
	}

	out := cb.clone()
	out.Status = next
	out.DoneDate = nil
	out.RecurrenceDate = nil

	if next.IsCompleted() && cb.RecurrenceRule != nil {
		now := t.now().In(t.engine.Location())
		due, err := t.engine.Next(cb.RecurrenceRule.WithStart(recurrence.StartOfDay(now)), recurrence.EndOfDay(now))
		if err != nil {
			return Checkbox{}, fmt.Errorf("next occurrence of %q: %w", cb.RecurrenceRule.Text(), err)
		}
		out.DoneDate = &now
		if !due.IsZero() {
			out.RecurrenceDate = &due
		}
	}
	return out, nil
}

// ToggleWithNext toggles cb and, when that completes a recurring item, also
// returns the next open instance first: [next, toggled]. Otherwise it returns
// [toggled].
func (t *Toggler) ToggleWithNext(cb Checkbox) ([]Checkbox, error) {
	toggled, err := t.Toggle(cb)
	if err != nil {
		return nil, err
	}
	if toggled.Status.Identical(cb.Status) || !toggled.Status.IsCompleted() || toggled.RecurrenceRule == nil {
		return []Checkbox{toggled}, nil
	}

	next := toggled.clone()
	next.Status = t.registry.NextOrCreate(toggled.Status)
	next.DoneDate = nil
	return []Checkbox{next, toggled}, nil
}
