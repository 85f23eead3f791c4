package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/internal/document"
	"github.com/sandeepkv93/dailycheck/internal/scheduler"
	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type WatchCmd struct {
	app *App

	once       bool
	jsonOutput bool
}

func NewWatchCmd(app *App) *WatchCmd {
	return &WatchCmd{app: app}
}

type dueOutput struct {
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Description string `json:"description"`
	DueAt       string `json:"due_at"`
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Print open recurring checkboxes as they become due",
		UsageText: "dailycheck watch [--once] [--json] [DIR]",
		Description: `Reads every markdown file under DIR (default ".") and prints each open
checkbox when its recurrence date arrives. Overdue checkboxes are printed at
once. Files are re-read every scheduler.reload_seconds.

With --once, prints what is due now and exits.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "once",
				Usage:       "print currently due checkboxes and exit",
				Destination: &cmd.once,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	root := "."
	if c.Args().Len() > 0 {
		root = c.Args().First()
	}
	svc := cmd.app.Service()
	out := c.Root().Writer

	if cmd.once {
		events, err := cmd.collect(svc, root)
		if err != nil {
			return err
		}
		now := cmd.app.Now()
		for _, ev := range events {
			if ev.DueAt.After(now) {
				continue
			}
			if err := cmd.print(out, ev); err != nil {
				return err
			}
		}
		return nil
	}

	cfg := cmd.app.Config.Scheduler
	engine := scheduler.NewEngine(cfg.Buffer,
		scheduler.WithClock(cmd.app.Now),
		scheduler.WithLogger(cmd.app.Log.With().Str("component", "scheduler").Logger()))
	engine.Start()
	defer engine.Stop()

	reload := func() error {
		events, err := cmd.collect(svc, root)
		if err != nil {
			return err
		}
		return engine.Replace(events)
	}
	if err := reload(); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.ReloadSeconds) * time.Second)
	defer ticker.Stop()

	// Replace re-queues overdue events on every reload.
	printed := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := reload(); err != nil {
				cmd.app.Log.Error().Err(err).Str("root", root).Msg("reload documents")
			}
		case ev, ok := <-engine.C():
			if !ok {
				return nil
			}
			if last, seen := printed[ev.ID]; seen && last.Equal(ev.DueAt) {
				continue
			}
			printed[ev.ID] = ev.DueAt
			if err := cmd.print(out, ev); err != nil {
				return err
			}
			if dropped := engine.Dropped(); dropped > 0 {
				cmd.app.Log.Warn().Uint64("dropped", dropped).Msg("due events dropped")
			}
		}
	}
}

func (cmd *WatchCmd) collect(svc *checklist.Service, root string) ([]scheduler.DueEvent, error) {
	paths, err := document.Scan(root, cmd.app.Config.Scan.Include, cmd.app.Config.Scan.Exclude)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	var events []scheduler.DueEvent
	for _, p := range paths {
		doc, err := document.Load(p)
		if err != nil {
			return nil, err
		}
		events = append(events, svc.DueEvents(doc)...)
	}
	return events, nil
}

func (cmd *WatchCmd) print(out io.Writer, ev scheduler.DueEvent) error {
	due := ev.DueAt.In(cmd.app.Engine.Location()).Format("2006-01-02")
	if cmd.jsonOutput {
		return iojson.WriteLine(out, dueOutput{Path: ev.Path, Line: ev.Line, Description: ev.Description, DueAt: due})
	}
	_, err := fmt.Fprintf(out, "%s:%d\t%s\tdue %s\n", ev.Path, ev.Line, ev.Description, due)
	return err
}
