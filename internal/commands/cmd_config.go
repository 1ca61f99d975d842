package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/dshills/rewind/internal/config"
)

type ConfigCmd struct {
	flags *Flags

	defaults bool
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "config",
		Usage:     "Print the effective configuration as TOML",
		UsageText: "rewind config [--defaults]",
		Description: `Prints the configuration after the config file and REWIND_* environment
variables have been applied. With --defaults, prints the built-in values,
suitable as a starting config file.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "defaults",
				Usage:       "print built-in defaults instead of the effective config",
				Destination: &cmd.defaults,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConfigCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cmd.defaults {
		cfg = config.Default()
	}
	return cfg.WriteTOML(c.Root().Writer)
}
