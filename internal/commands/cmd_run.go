package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dshills/rewind/internal/bell"
	"github.com/dshills/rewind/internal/logging"
	"github.com/dshills/rewind/internal/report"
	"github.com/dshills/rewind/internal/script"
)

type RunCmd struct {
	flags *Flags

	noReport   bool
	timestamps bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run a Lua script against a fresh history",
		UsageText: "rewind run [command options] SCRIPT",
		Description: `Executes SCRIPT with a global 'history' table, then prints the resulting
history with the cursor marked.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-report",
				Usage:       "do not print the history after the script",
				Destination: &cmd.noReport,
			},
			&cli.BoolFlag{
				Name:        "timestamps",
				Aliases:     []string{"t"},
				Usage:       "include entry timestamps in the report",
				Destination: &cmd.timestamps,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("missing SCRIPT argument")
	}

	b, err := bell.FromMode(cmd.flags.Config.History.Bell, os.Stderr)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd.flags, b)
	if err != nil {
		return err
	}

	runner := script.New(eng.hist,
		script.WithOutput(c.Root().Writer),
		script.WithLogger(logging.Component(eng.log, "script")),
	)
	defer func() { _ = runner.Close() }()

	if err := runner.RunFile(ctx, path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}

	if cmd.noReport {
		return nil
	}
	return report.Render(c.Root().Writer, report.Take(eng.hist), report.Options{Timestamps: cmd.timestamps})
}
