package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/internal/checklist"
	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type ToggleCmd struct {
	app *App

	noNext     bool
	jsonOutput bool
}

func NewToggleCmd(app *App) *ToggleCmd {
	return &ToggleCmd{app: app}
}

type toggleOutput struct {
	Path   string         `json:"path"`
	Line   int            `json:"line"`
	Before checkboxInfo   `json:"before"`
	After  []checkboxInfo `json:"after"`
}

// Register adds the toggle command to the application
func (cmd *ToggleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "toggle",
		Usage:     "Toggle the checkbox on a line of a markdown file",
		UsageText: "dailycheck toggle [--no-next] [--json] FILE LINE",
		Description: `Moves the checkbox on LINE (1-based) to its next status and saves the file.

Completing a recurring checkbox stamps today's date and the next due date. By
default the next open instance is inserted above the completed line; use
--no-next to only rewrite the line itself.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-next",
				Usage:       "do not insert the next instance of a recurring checkbox",
				Destination: &cmd.noNext,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the result as a JSON line",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ToggleCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("toggle requires FILE and LINE arguments")
	}
	path := c.Args().Get(0)
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || line < 1 {
		return fmt.Errorf("invalid line %q", c.Args().Get(1))
	}

	var opts []checklist.Option
	if cmd.noNext {
		opts = append(opts, checklist.WithInsertNext(false))
	}
	res, err := cmd.app.Service(opts...).ToggleLine(ctx, path, line)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if !cmd.jsonOutput {
		for _, l := range res.Lines {
			if _, err := fmt.Fprintln(out, l); err != nil {
				return err
			}
		}
		return nil
	}

	payload := toggleOutput{
		Path:   res.Path,
		Line:   res.Line,
		Before: newCheckboxInfo(res.Line, res.Before, res.Before.OriginalMarkdown, nil),
	}
	for i, cb := range res.Checkboxes {
		payload.After = append(payload.After, newCheckboxInfo(res.Line+i, cb, res.Lines[i], nil))
	}
	if err := iojson.WriteLine(out, payload); err != nil {
		return fmt.Errorf("encode toggle: %w", err)
	}
	return nil
}
