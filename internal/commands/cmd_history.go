package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type HistoryCmd struct {
	app *App

	since      string
	limit      int
	jsonOutput bool
}

func NewHistoryCmd(app *App) *HistoryCmd {
	return &HistoryCmd{app: app}
}

type historyOutput struct {
	ID          string `json:"id"`
	Line        int    `json:"line"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
	Rule        string `json:"rule,omitempty"`
	DoneAt      string `json:"done_at"`
	NextDueAt   string `json:"next_due_at,omitempty"`
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "List recorded checkbox completions",
		UsageText: "dailycheck history [--since DATE] [--limit N] [--json] [FILE]",
		Description: `Lists completions recorded by toggle, newest first. With FILE only the
completions of that file are listed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "since",
				Usage:       "only completions on or after this date (YYYY-MM-DD)",
				Destination: &cmd.since,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of completions",
				Value:       50,
				Destination: &cmd.limit,
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

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	var since *time.Time
	if cmd.since != "" {
		t, err := cmd.app.ParseDate(cmd.since)
		if err != nil {
			return err
		}
		since = &t
	}

	items, err := cmd.app.Service().History(ctx, c.Args().First(), since, cmd.limit)
	if err != nil {
		return err
	}

	loc := cmd.app.Engine.Location()
	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, it := range items {
			row := historyOutput{
				ID:          it.ID,
				Line:        it.Line,
				Description: it.Description,
				Symbol:      it.StatusSymbol,
				Rule:        it.Rule,
				DoneAt:      it.DoneAt.In(loc).Format(time.RFC3339),
			}
			if it.NextDueAt != nil {
				row.NextDueAt = it.NextDueAt.In(loc).Format("2006-01-02")
			}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode completion: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DONE\tLINE\tDESCRIPTION\tRULE\tNEXT")
	for _, it := range items {
		next := "-"
		if it.NextDueAt != nil {
			next = it.NextDueAt.In(loc).Format("2006-01-02")
		}
		rule := it.Rule
		if rule == "" {
			rule = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", it.DoneAt.In(loc).Format("2006-01-02 15:04"), it.Line, it.Description, rule, next)
	}
	return w.Flush()
}
