package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type ParseCmd struct {
	app *App

	jsonOutput bool
}

func NewParseCmd(app *App) *ParseCmd {
	return &ParseCmd{app: app}
}

// Register adds the parse command to the application
func (cmd *ParseCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "parse",
		Usage:     "Parse checkbox lines and print them normalized",
		UsageText: "dailycheck parse [--json] [LINE...]",
		Description: `Parses each argument, or each line of stdin when no arguments are given,
and prints the line re-serialized in canonical field order, using the layout
options from the config file. Lines that are not checkboxes are printed
unchanged.

With --json, every checkbox is printed as one JSON object per line, including
diagnostics for recurrence rules or dates that could not be read.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output checkboxes as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ParseCmd) run(_ context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if c.Args().Len() > 0 {
		for i, line := range c.Args().Slice() {
			if err := cmd.emit(out, i+1, line); err != nil {
				return err
			}
		}
		return nil
	}

	var in io.Reader = os.Stdin
	if c.Root().Reader != nil {
		in = c.Root().Reader
	}
	scanner := bufio.NewScanner(in)
	n := 0
	for scanner.Scan() {
		n++
		if err := cmd.emit(out, n, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (cmd *ParseCmd) emit(out io.Writer, n int, line string) error {
	cb, diags, ok := cmd.app.Parser.Inspect(line)
	if !ok {
		if cmd.jsonOutput {
			return nil
		}
		_, err := fmt.Fprintln(out, line)
		return err
	}

	formatted := cmd.app.Display.Format(cb)
	if cmd.jsonOutput {
		if err := iojson.WriteLine(out, newCheckboxInfo(n, cb, formatted, diags)); err != nil {
			return fmt.Errorf("encode checkbox: %w", err)
		}
		return nil
	}
	for _, d := range diags {
		cmd.app.Log.Warn().Int("line", n).Str("kind", string(d.Kind)).Str("text", d.Text).Msg("dropped field")
	}
	_, err := fmt.Fprintln(out, formatted)
	return err
}
