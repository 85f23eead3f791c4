package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/pkg/iojson"
)

type StatusesCmd struct {
	app *App

	jsonOutput bool
}

func NewStatusesCmd(app *App) *StatusesCmd {
	return &StatusesCmd{app: app}
}

// Register adds the statuses command to the application
func (cmd *StatusesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "statuses",
		Usage:     "List the registered checkbox statuses",
		UsageText: "dailycheck statuses [--json]",
		Flags: []cli.Flag{
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

func (cmd *StatusesCmd) run(_ context.Context, c *cli.Command) error {
	all := cmd.app.Registry.All()
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, s := range all {
			if err := iojson.WriteLine(out, s); err != nil {
				return fmt.Errorf("encode status: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SYMBOL\tNAME\tNEXT\tTYPE")
	for _, s := range all {
		_, _ = fmt.Fprintf(w, "[%s]\t%s\t[%s]\t%s\n", s.Symbol, s.Name, s.NextSymbol, s.Type)
	}
	return w.Flush()
}
