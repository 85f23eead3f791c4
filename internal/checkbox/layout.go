package checkbox

import "slices"

type Component string

const (
	ComponentDescription    Component = "description"
	ComponentRecurrenceRule Component = "recurrenceRule"
	ComponentDoneDate       Component = "doneDate"
	ComponentRecurrenceDate Component = "recurrenceDate"
	ComponentBlockLink      Component = "blockLink"
)

var defaultComponents = []Component{
	ComponentDescription,
	ComponentRecurrenceRule,
	ComponentDoneDate,
	ComponentRecurrenceDate,
	ComponentBlockLink,
}

type LayoutOptions struct {
	HideRecurrenceRule bool
	HideDoneDate       bool
	HideRecurrenceDate bool
	// ShortMode renders field symbols without their values.
	ShortMode bool
}

// Layout is the ordered list of components a serializer renders.
type Layout struct {
	Options LayoutOptions
	Shown   []Component
	Hidden  []Component
}

func DefaultLayout() Layout {
	return NewLayout(LayoutOptions{})
}

func NewLayout(opts LayoutOptions) Layout {
	l := Layout{Options: opts, Shown: slices.Clone(defaultComponents)}
	for _, h := range []struct {
		hide      bool
		component Component
	}{
		{opts.HideRecurrenceRule, ComponentRecurrenceRule},
		{opts.HideRecurrenceDate, ComponentRecurrenceDate},
		{opts.HideDoneDate, ComponentDoneDate},
	} {
		if h.hide {
			l.hide(h.component)
		}
	}
	return l
}

func (l *Layout) hide(c Component) {
	l.Hidden = append(l.Hidden, c)
	l.Shown = slices.DeleteFunc(l.Shown, func(s Component) bool { return s == c })
}

func (l Layout) IsShown(c Component) bool {
	return slices.Contains(l.Shown, c)
}
