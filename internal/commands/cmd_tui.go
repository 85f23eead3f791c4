package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/internal/scheduler"
	"github.com/sandeepkv93/dailycheck/internal/update"
)

type TuiCmd struct {
	app *App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(app *App) *TuiCmd {
	return &TuiCmd{app: app}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Browse and toggle the checkboxes of a markdown file",
		UsageText: "dailycheck tui FILE",
		Action:    cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() < 1 {
		return errors.New("usage: dailycheck tui FILE")
	}
	path := c.Args().First()

	engine := scheduler.NewEngine(cmd.app.Config.Scheduler.Buffer,
		scheduler.WithClock(cmd.app.Now),
		scheduler.WithLogger(cmd.app.Log.With().Str("component", "scheduler").Logger()))
	engine.Start()
	defer engine.Stop()

	m, err := update.NewModel(update.Options{
		Path:      path,
		Service:   cmd.app.Service(),
		Scheduler: engine,
		Display:   cmd.app.Display,
		Now:       cmd.app.Now,
		Log:       cmd.app.Log.With().Str("component", "tui").Logger(),
		Context:   ctx,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
