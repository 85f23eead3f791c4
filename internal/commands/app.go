package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/internal/config"
	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/internal/status"
	"github.com/sandeepkv93/dailycheck/internal/storage"
)

// App holds what every command works with. main fills it in the Before hook;
// commands keep a pointer to it.
type App struct {
	Config   *config.Config
	Registry *status.Registry
	Engine   *recurrence.Engine
	// Parser reads and writes file lines with every field shown.
	Parser   *checkbox.Parser
	// Display renders checkboxes with the configured layout. Its output is
	// never written back to a file.
	Display  *checkbox.Parser
	Repo     *storage.SQLiteRepository
	Log      zerolog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewApp wires the components described by cfg. The completion database is
// opened unless cfg disables it.
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.ValidateDeep(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	engine := recurrence.NewEngine(append(cfg.EngineOptions(),
		recurrence.WithLogger(log.With().Str("component", "recurrence").Logger()))...)
	registry := cfg.Registry()
	serializerLog := log.With().Str("component", "serializer").Logger()
	fileSerializer := checkbox.NewSerializer(checkbox.DefaultLayout(), engine.Location(), serializerLog)
	displaySerializer := checkbox.NewSerializer(cfg.CheckboxLayout(), engine.Location(), serializerLog)

	app := &App{
		Config:   cfg,
		Registry: registry,
		Engine:   engine,
		Parser:   checkbox.NewParser(registry, fileSerializer),
		Display:  checkbox.NewParser(registry, displaySerializer),
		Log:      log,
	}

	if !cfg.Database.Disabled && cfg.Database.Path != "" {
		repo, err := storage.OpenSQLite(cfg.Database.Path, log.With().Str("component", "storage").Logger())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		app.Repo = repo
	}
	return app, nil
}

func (a *App) Now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// Service builds a checklist service over the app's components. opts are
// applied after the configured defaults.
func (a *App) Service(opts ...checklist.Option) *checklist.Service {
	toggler := checkbox.NewToggler(a.Registry, a.Engine, checkbox.WithClock(a.Now))
	base := []checklist.Option{
		checklist.WithClock(a.Now),
		checklist.WithInsertNext(a.Config.Recurrence.InsertNext),
		checklist.WithLogger(a.Log.With().Str("component", "checklist").Logger()),
	}
	if a.Repo != nil {
		base = append(base, checklist.WithRepository(a.Repo))
	}
	return checklist.NewService(a.Parser, toggler, a.Engine, append(base, opts...)...)
}

// ParseDate reads a YYYY-MM-DD day in the engine's location.
func (a *App) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(checkbox.DateLayout, s, a.Engine.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func (a *App) Close() error {
	if a.Repo == nil {
		return nil
	}
	return a.Repo.Close()
}
