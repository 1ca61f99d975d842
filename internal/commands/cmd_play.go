package commands

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"

	"github.com/dshills/rewind/internal/bell"
	"github.com/dshills/rewind/internal/config"
	"github.com/dshills/rewind/internal/logging"
	"github.com/dshills/rewind/internal/player"
	"github.com/dshills/rewind/internal/script"
)

type PlayCmd struct {
	flags *Flags

	watch bool
}

// NewPlayCmd creates a new play command
func NewPlayCmd(flags *Flags) *PlayCmd {
	return &PlayCmd{flags: flags}
}

// Register adds the play command to the application
func (cmd *PlayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "play",
		Usage:     "Run a Lua script, then step through its history interactively",
		UsageText: "rewind play [command options] SCRIPT",
		Description: `Executes SCRIPT and opens a full-screen view of the history.

Keys: u or Ctrl+Z undo, r or Ctrl+Y redo, c clear, t toggle timestamps,
q or Esc quit. Log output is shown after the screen closes.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "watch",
				Usage:       "reload the config file and apply capacity changes while playing",
				Value:       true,
				Destination: &cmd.watch,
			},
		},
		Before: cmd.before,
		Action: cmd.run,
	})

	return app
}

// before buffers console logs: the screen owns the terminal until play exits.
func (cmd *PlayCmd) before(ctx context.Context, _ *cli.Command) (context.Context, error) {
	cmd.flags.Deferred = &logging.Deferred{}
	return ctx, setupLogger(cmd.flags, cmd.flags.Deferred)
}

func (cmd *PlayCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("missing SCRIPT argument")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	var b bell.Bell = bell.Nop
	if cmd.flags.Config.History.Bell != bell.ModeNone {
		b = bell.NewTerminal(screen)
	}
	eng, err := newEngine(cmd.flags, b)
	if err != nil {
		return err
	}

	// Script output would corrupt the screen; keep it with the logs.
	runner := script.New(eng.hist,
		script.WithOutput(cmd.flags.Deferred),
		script.WithLogger(logging.Component(eng.log, "script")),
	)
	defer func() { _ = runner.Close() }()

	if err := runner.RunFile(ctx, path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}

	p := player.New(screen, runner, eng.hist, player.WithLogger(logging.Component(eng.log, "player")))
	if _, err := eng.bus.Subscribe("history.**", p.Notify); err != nil {
		return fmt.Errorf("subscribe player: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cmd.watch && cmd.flags.ConfigPath != "" {
		w, err := config.NewWatcher(cmd.flags.ConfigPath, logging.Component(eng.log, "config"), func(cfg config.Config) {
			eng.hist.SetCapacity(cfg.History.Capacity)
		})
		if err != nil {
			eng.log.Warn().Err(err).Msg("config watch disabled")
		} else {
			go func() { _ = w.Run(ctx) }()
		}
	}

	return p.Run(ctx)
}
