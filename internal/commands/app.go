package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dshills/rewind/internal/config"
	"github.com/dshills/rewind/internal/logging"
)

// NewApp builds the root command. out receives command output; console
// receives logs.
func NewApp(version string, flags *Flags, out, console io.Writer) *cli.Command {
	app := &cli.Command{
		Name:      "rewind",
		Usage:     "Record reversible actions and step through them",
		UsageText: "rewind [global options] command [command options]",
		Description: `rewind keeps a linear undo/redo history of actions defined in Lua scripts.

Run 'rewind run SCRIPT' to execute a script and print its history.
Run 'rewind play SCRIPT' to step through the history interactively.`,
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Sources:     cli.EnvVars(config.EnvLogLevel),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to a rotated log file (optional)",
				Sources:     cli.EnvVars(config.EnvLogFile),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (.toml, .yaml or .yml)",
				Sources:     cli.EnvVars(config.EnvPrefix + "CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Flags win over the file.
			if flags.LogLevel != "" {
				cfg.Log.Level = flags.LogLevel
			}
			if flags.LogFile != "" {
				cfg.Log.File = flags.LogFile
			}
			flags.Config = cfg

			return ctx, setupLogger(flags, console)
		},
		After: func(context.Context, *cli.Command) error {
			if flags.Logger != nil {
				return flags.Logger.Close()
			}
			return nil
		},
	}

	app = NewRunCmd(flags).Register(app)
	app = NewPlayCmd(flags).Register(app)
	app = NewConfigCmd(flags).Register(app)
	return app
}

// setupLogger (re)builds flags.Logger from flags.Config, sending console
// output to console. A previous logger is closed first.
func setupLogger(flags *Flags, console io.Writer) error {
	if flags.Logger != nil {
		if err := flags.Logger.Close(); err != nil {
			return err
		}
	}

	cfg := flags.Config.Log
	logger, err := logging.Setup(logging.Options{
		Level:      cfg.Level,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Console:    console,
	})
	if err != nil {
		return err
	}
	flags.Logger = logger
	return nil
}

// FlushDeferred writes logs buffered during play to w.
func FlushDeferred(flags *Flags, w io.Writer) error {
	if flags.Deferred == nil {
		return nil
	}
	return flags.Deferred.Flush(w)
}

// Main runs the application with the process arguments and returns the exit
// code.
func Main(version string) int {
	flags := &Flags{}
	app := NewApp(version, flags, os.Stdout, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		exitCode = 1
	}

	if err := FlushDeferred(flags, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	return exitCode
}
