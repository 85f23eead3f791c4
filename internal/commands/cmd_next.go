package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/internal/recurrence"
	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type NextCmd struct {
	app *App

	from       string
	reference  string
	due        string
	count      int
	jsonOutput bool
}

func NewNextCmd(app *App) *NextCmd {
	return &NextCmd{app: app}
}

type nextOutput struct {
	Rule  string   `json:"rule"`
	Dates []string `json:"dates"`
}

type occurrenceOutput struct {
	Rule           string `json:"rule"`
	ReferenceDate  string `json:"reference_date"`
	RecurrenceDate string `json:"recurrence_date,omitempty"`
}

// Register adds the next command to the application
func (cmd *NextCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "next",
		Usage:     "Preview the next dates of a recurrence rule",
		UsageText: "dailycheck next [--from DATE] [--count N] [--reference DATE [--due DATE]] [--json] RULE...",
		Description: `Prints the next occurrences of a rule such as "every month" or
"every 2 weeks on Monday". Months and years that the rule would skip, like
February for a rule anchored on the 31st, land on the last day instead.

With --reference the rule is advanced as a recurring item would be: each step
prints the next reference date and, when --due is given, the due date shifted
by the same number of days.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "from",
				Usage:       "start date (YYYY-MM-DD), defaults to today",
				Destination: &cmd.from,
			},
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"n"},
				Usage:       "number of dates to print",
				Value:       5,
				Destination: &cmd.count,
			},
			&cli.StringFlag{
				Name:        "reference",
				Usage:       "reference date (YYYY-MM-DD) of a recurring item",
				Destination: &cmd.reference,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD) of a recurring item, requires --reference",
				Destination: &cmd.due,
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

func (cmd *NextCmd) run(_ context.Context, c *cli.Command) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("next requires a rule, e.g. \"every month\"")
	}
	if cmd.count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	if cmd.reference != "" || cmd.due != "" {
		return cmd.runOccurrences(c, text)
	}

	rule, err := recurrence.ParseRule(text)
	if err != nil {
		return err
	}
	from := cmd.app.Now()
	if cmd.from != "" {
		if from, err = cmd.app.ParseDate(cmd.from); err != nil {
			return err
		}
	}

	dates, err := cmd.app.Engine.Preview(rule, from, cmd.count)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		payload := nextOutput{Rule: rule.Text(), Dates: make([]string, 0, len(dates))}
		for _, d := range dates {
			payload.Dates = append(payload.Dates, d.Format("2006-01-02"))
		}
		return iojson.WriteLine(out, payload)
	}
	for _, d := range dates {
		if _, err := fmt.Fprintln(out, d.Format("2006-01-02 Mon")); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *NextCmd) runOccurrences(c *cli.Command, text string) error {
	var ref, due *time.Time
	if cmd.reference != "" {
		t, err := cmd.app.ParseDate(cmd.reference)
		if err != nil {
			return err
		}
		ref = &t
	}
	if cmd.due != "" {
		t, err := cmd.app.ParseDate(cmd.due)
		if err != nil {
			return err
		}
		due = &t
	}

	now := cmd.app.Now()
	rec, err := recurrence.FromText(text, ref, due, now)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	for i := 0; i < cmd.count; i++ {
		next, err := cmd.app.Engine.NextOccurrence(rec, now)
		if err != nil {
			return err
		}
		if next == nil {
			break
		}
		row := occurrenceOutput{
			Rule:           next.Rule.Text(),
			ReferenceDate:  formatDay(next.ReferenceDate),
			RecurrenceDate: formatDay(next.RecurrenceDate),
		}
		if cmd.jsonOutput {
			if err := iojson.WriteLine(out, row); err != nil {
				return err
			}
		} else {
			line := row.ReferenceDate
			if row.RecurrenceDate != "" {
				line += " due " + row.RecurrenceDate
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		rec = *next
	}
	return nil
}
