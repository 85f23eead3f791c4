// Package checklist toggles checkbox lines inside markdown files and keeps
// the completion history.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/document"
	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/scheduler"
	"github.com/sandeepkv93/dailycheck/internal/status"
	"github.com/sandeepkv93/dailycheck/internal/storage"
)

var (
	ErrNotRecurring = errors.New("checklist: checkbox has no recurrence rule")
	ErrNoHistory    = errors.New("checklist: completion history is not configured")
)

type Service struct {
	parser     *checkbox.Parser
	toggler    *checkbox.Toggler
	engine     *recurrence.Engine
	repo       storage.Repository
	now        func() time.Time
	newID      func() string
	insertNext bool
	log        zerolog.Logger
}

type Option func(*Service)

// WithRepository enables completion history. Without it toggles are not
// recorded.
func WithRepository(repo storage.Repository) Option {
	return func(s *Service) { s.repo = repo }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithInsertNext makes completing a recurring checkbox also write its next
// open instance on the line above.
func WithInsertNext(enabled bool) Option {
	return func(s *Service) { s.insertNext = enabled }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(parser *checkbox.Parser, toggler *checkbox.Toggler, engine *recurrence.Engine, opts ...Option) *Service {
	s := &Service{
		parser:  parser,
		toggler: toggler,
		engine:  engine,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Parser() *checkbox.Parser {
	return s.parser
}

// ToggleResult describes one toggled line. Checkboxes and Lines hold what
// replaced the original line, in document order.
type ToggleResult struct {
	Path       string
	Line       int
	Before     checkbox.Checkbox
	Checkboxes []checkbox.Checkbox
	Lines      []string
}

// Toggled is the checkbox that took the original line's status transition.
func (r ToggleResult) Toggled() checkbox.Checkbox {
	return r.Checkboxes[len(r.Checkboxes)-1]
}

// ToggleLine loads path, toggles the checkbox on line and saves the file.
func (s *Service) ToggleLine(ctx context.Context, path string, line int) (ToggleResult, error) {
	doc, err := document.Load(path)
	if err != nil {
		return ToggleResult{}, err
	}
	res, err := s.ToggleDocumentLine(ctx, doc, line)
	if err != nil {
		return ToggleResult{}, err
	}
	if err := doc.Save(); err != nil {
		return ToggleResult{}, fmt.Errorf("toggle line %d: %w", line, err)
	}
	return res, nil
}

// ToggleDocumentLine toggles line in doc without saving it. Completions are
// recorded when a repository is configured.
func (s *Service) ToggleDocumentLine(ctx context.Context, doc *document.Document, line int) (ToggleResult, error) {
	cb, err := doc.Checkbox(s.parser, line)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle line %d: %w", line, err)
	}

	var out []checkbox.Checkbox
	if s.insertNext {
		out, err = s.toggler.ToggleWithNext(cb)
	} else {
		var toggled checkbox.Checkbox
		toggled, err = s.toggler.Toggle(cb)
		out = []checkbox.Checkbox{toggled}
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle line %d: %w", line, err)
	}

	lines := make([]string, 0, len(out))
	for _, c := range out {
		lines = append(lines, s.parser.Format(c))
	}
	if err := doc.ReplaceLine(line, lines...); err != nil {
		return ToggleResult{}, fmt.Errorf("toggle line %d: %w", line, err)
	}

	res := ToggleResult{Path: doc.Path, Line: line, Before: cb, Checkboxes: out, Lines: lines}
	toggled := res.Toggled()
	s.log.Info().
		Str("path", doc.Path).
		Int("line", line).
		Str("from", cb.Status.Name).
		Str("to", toggled.Status.Name).
		Msg("toggled checkbox")

	if toggled.Status.IsCompleted() && !cb.Status.IsCompleted() {
		if err := s.recordCompletion(ctx, doc, line+len(out)-1, toggled); err != nil {
			s.log.Error().Err(err).Str("path", doc.Path).Int("line", line).Msg("record completion")
		}
	}
	return res, nil
}

func (s *Service) recordCompletion(ctx context.Context, doc *document.Document, line int, cb checkbox.Checkbox) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.syncDocument(ctx, doc)
	if err != nil {
		return err
	}

	now := s.now()
	doneAt := now
	if cb.DoneDate != nil {
		doneAt = *cb.DoneDate
	}
	rule := ""
	if cb.RecurrenceRule != nil {
		rule = cb.RecurrenceRule.Text()
	}
	return s.repo.CreateCompletion(ctx, storage.Completion{
		ID:           s.newID(),
		DocumentID:   stored.ID,
		Line:         line,
		Description:  cb.Description,
		StatusSymbol: cb.Status.Symbol,
		Rule:         rule,
		DoneAt:       doneAt,
		NextDueAt:    cb.RecurrenceDate,
		CreatedAt:    now,
	})
}

func (s *Service) syncDocument(ctx context.Context, doc *document.Document) (storage.Document, error) {
	entries := doc.Checkboxes(s.parser)
	open := 0
	for _, e := range entries {
		if isOpen(e.Checkbox) {
			open++
		}
	}
	path, err := filepath.Abs(doc.Path)
	if err != nil {
		path = doc.Path
	}
	return s.repo.UpsertDocument(ctx, storage.Document{
		ID:            s.newID(),
		Path:          path,
		CheckboxCount: len(entries),
		OpenCount:     open,
		ScannedAt:     s.now(),
	})
}

// Summary counts the checkboxes of one file.
type Summary struct {
	Path      string
	Total     int
	Open      int
	Done      int
	Cancelled int
	Recurring int
	Entries   []document.Entry
}

// Scan summarizes every matching file under root and, with a repository,
// stores the counts.
func (s *Service) Scan(ctx context.Context, root string, include, exclude []string) ([]Summary, error) {
	paths, err := document.Scan(root, include, exclude)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(paths))
	for _, p := range paths {
		doc, err := document.Load(p)
		if err != nil {
			return nil, err
		}
		sum := s.Summarize(doc)
		if sum.Total == 0 {
			continue
		}
		if s.repo != nil {
			if _, err := s.syncDocument(ctx, doc); err != nil {
				return nil, fmt.Errorf("sync %s: %w", p, err)
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) Summarize(doc *document.Document) Summary {
	sum := Summary{Path: doc.Path, Entries: doc.Checkboxes(s.parser)}
	sum.Total = len(sum.Entries)
	for _, e := range sum.Entries {
		switch {
		case e.Checkbox.Status.IsCompleted():
			sum.Done++
		case e.Checkbox.Status.Type == status.TypeCancelled:
			sum.Cancelled++
		case isOpen(e.Checkbox):
			sum.Open++
		}
		if e.Checkbox.IsRecurring() {
			sum.Recurring++
		}
	}
	return sum
}

func isOpen(cb checkbox.Checkbox) bool {
	return cb.Status.Type == status.TypeTodo || cb.Status.Type == status.TypeInProgress
}

// DueItem is an open checkbox with a recurrence date.
type DueItem struct {
	Path        string
	Line        int
	Description string
	DueAt       time.Time
	Overdue     bool
}

// Upcoming lists open checkboxes due before now+within, earliest first.
// A zero within means no upper bound.
func (s *Service) Upcoming(doc *document.Document, within time.Duration) []DueItem {
	now := s.now()
	var out []DueItem
	for _, e := range doc.Checkboxes(s.parser) {
		cb := e.Checkbox
		if cb.RecurrenceDate == nil || !isOpen(cb) {
			continue
		}
		due := *cb.RecurrenceDate
		if within > 0 && due.After(now.Add(within)) {
			continue
		}
		out = append(out, DueItem{
			Path:        doc.Path,
			Line:        e.Line,
			Description: cb.Description,
			DueAt:       due,
			Overdue:     due.Before(recurrence.StartOfDay(now.In(s.engine.Location()))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

// DueEvents converts the upcoming items of doc into scheduler events.
func (s *Service) DueEvents(doc *document.Document) []scheduler.DueEvent {
	items := s.Upcoming(doc, 0)
	out := make([]scheduler.DueEvent, 0, len(items))
	for _, it := range items {
		out = append(out, scheduler.DueEvent{
			ID:          fmt.Sprintf("%s:%d", it.Path, it.Line),
			Path:        it.Path,
			Line:        it.Line,
			Description: it.Description,
			DueAt:       it.DueAt,
		})
	}
	return out
}

// Preview lists the next count occurrences of cb's rule from now.
func (s *Service) Preview(cb checkbox.Checkbox, count int) ([]time.Time, error) {
	if cb.RecurrenceRule == nil {
		return nil, fmt.Errorf("preview %q: %w", cb.Description, ErrNotRecurring)
	}
	return s.engine.Preview(*cb.RecurrenceRule, s.now(), count)
}

// History returns recorded completions, newest first. An empty path lists
// every document.
func (s *Service) History(ctx context.Context, path string, since *time.Time, limit int) ([]storage.Completion, error) {
	if s.repo == nil {
		return nil, ErrNoHistory
	}
	filter := storage.CompletionListFilter{Since: since, Limit: limit}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		doc, err := s.repo.GetDocumentByPath(ctx, abs)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", path, err)
		}
		filter.DocumentID = doc.ID
	}
	return s.repo.ListCompletions(ctx, filter)
}
