package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sandeepkv93/dailycheck/internal/commands"
	"github.com/sandeepkv93/dailycheck/internal/config"
	"github.com/sandeepkv93/dailycheck/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCloser func()
		app       = &commands.App{}
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "dailycheck",
		Usage:     "Toggle recurring markdown checkboxes",
		UsageText: "dailycheck [global options] command [command options]",
		Description: `dailycheck reads "- [ ]" checkbox lines in markdown files. Completing a
checkbox that carries a "🔁 every ..." rule stamps the done date and writes
the next occurrence, correcting for months and years that lack the day.

Run 'dailycheck FILE' to open the interactive checklist for FILE.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("DAILYCHECK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/dailycheck.log)",
				Sources:     cli.EnvVars("DAILYCHECK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (.yaml or .toml)",
				Sources:     cli.EnvVars("DAILYCHECK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("DAILYCHECK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "dailycheck.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			wired, err := commands.NewApp(cfg, logger)
			if err != nil {
				return ctx, err
			}
			// Populate the pre-allocated App (commands already hold a pointer to it)
			*app = *wired
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := app.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(app)

	root = commands.NewParseCmd(app).Register(root)
	root = commands.NewToggleCmd(app).Register(root)
	root = commands.NewNextCmd(app).Register(root)
	root = commands.NewScanCmd(app).Register(root)
	root = commands.NewHistoryCmd(app).Register(root)
	root = commands.NewStatusesCmd(app).Register(root)
	root = commands.NewWatchCmd(app).Register(root)
	root = tuiCmd.Register(root)

	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() == 0 {
			return errors.New("missing FILE. Run 'dailycheck --help' for usage")
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}
	stop()
	os.Exit(exitCode)
}
