package update

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/internal/document"
	"github.com/sandeepkv93/dailycheck/internal/palette"
	"github.com/sandeepkv93/dailycheck/internal/scheduler"
)

const maxDueLog = 20

type FilterState struct {
	Filter palette.Filter
	Tag    string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up      string
	Down    string
	Toggle  string
	Palette string
	Reload  string
	Preview string
	Filter  string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// PreviewState holds the upcoming dates of one checkbox.
type PreviewState struct {
	Line  int
	Dates []time.Time
}

type Options struct {
	Path      string
	Service   *checklist.Service
	Scheduler *scheduler.Engine
	// Display renders checkbox lines in the detail pane. The service's own
	// parser is used when it is nil.
	Display   *checkbox.Parser
	Now       func() time.Time
	Log       zerolog.Logger
	Context   context.Context
}

type Model struct {
	Path        string
	Filter      FilterState
	Entries     []document.Entry
	Visible     []document.Entry
	Due         map[int]checklist.DueItem
	Cursor      int
	DueLog      []scheduler.DueEvent
	Palette     CommandPaletteState
	Preview     PreviewState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	svc       *checklist.Service
	scheduler *scheduler.Engine
	display   *checkbox.Parser
	now       func() time.Time
	log       zerolog.Logger
	ctx       context.Context

	commandInput   textinput.Model
	helpModel      help.Model
	detailViewport viewport.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type DueMsg struct {
	Event scheduler.DueEvent
}

type ReloadMsg struct{}

var ErrNoService = errors.New("update: checklist service is required")

func NewModel(opts Options) (Model, error) {
	if opts.Service == nil {
		return Model{}, ErrNoService
	}
	m := Model{
		Path:      opts.Path,
		Filter:    FilterState{Filter: palette.FilterAll},
		Due:       make(map[int]checklist.DueItem),
		svc:       opts.Service,
		scheduler: opts.Scheduler,
		display:   opts.Display,
		now:       opts.Now,
		log:       opts.Log,
		ctx:       opts.Context,
		Keys: GlobalKeyMap{
			Up:      "k",
			Down:    "j",
			Toggle:  "x",
			Palette: "/",
			Reload:  "r",
			Preview: "p",
			Filter:  "f",
			Help:    "?",
			Quit:    "q",
		},
	}
	if m.display == nil {
		m.display = m.svc.Parser()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	m.initBubbleComponents()
	if err := m.reload(); err != nil {
		return Model{}, err
	}
	m.syncBubbleData()
	return m, nil
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "toggle 3 | show open tag:#home | preview 3 | reload"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.detailViewport = viewport.New(54, 12)
}
