package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/srcupdate/internal"
	"github.com/starford/srcupdate/internal/apperr"
	pkgconfig "github.com/starford/srcupdate/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func newApp(cmd *cli.Command) (*internal.App, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return internal.New(internal.WithConfig(cfg))
}

// skipExit distinguishes deliberate skips and guard refusals from hard
// failures: disabled installation, live lock, missing required key.
func skipExit(err error) error {
	if errors.Is(err, apperr.ErrSuspended) ||
		errors.Is(err, apperr.ErrLockHeld) ||
		errors.Is(err, apperr.ErrMissingKey) {
		return cli.Exit(err.Error(), 2)
	}
	return err
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "srcupdate",
		Usage: "Guarded update orchestration for a Debian source mirror",
		// Unknown subcommands print usage and exit 0, like a bare
		// invocation does.
		CommandNotFound: func(_ context.Context, cmd *cli.Command, name string) {
			root := cmd.Root()
			fmt.Fprintf(root.Writer, "unknown command %q\n\n", name)
			_ = cli.ShowAppHelp(root)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Run one guarded mirror-sync and source update",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return skipExit(app.Update(ctx))
				},
			},
			{
				Name:  "enable",
				Usage: "Re-enable update runs (remove the disable sentinel)",
				Action: func(_ context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Enable()
				},
			},
			{
				Name:  "disable",
				Usage: "Suspend update runs (create the disable sentinel)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "Reason recorded in the sentinel file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Disable(cmd.String("message"))
				},
			},
			{
				Name:  "status",
				Usage: "Show suspension state and recent run history",
				Action: func(_ context.Context, cmd *cli.Command) error {
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Status(os.Stdout)
				},
			},
			{
				Name:      "extract",
				Usage:     "Extract sorted package/version identifiers from control files",
				ArgsUsage: "FILE...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return cli.Exit("extract: no input files", 1)
					}
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Extract(ctx, cmd.Args().Slice(), os.Stdout)
				},
			},
			{
				Name:      "checksums",
				Usage:     "Print SHA256SUM lines for every file under a directory",
				ArgsUsage: "DIR",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return cli.Exit("checksums: exactly one directory expected", 1)
					}
					app, err := newApp(cmd)
					if err != nil {
						return err
					}
					return app.Checksums(cmd.Args().First(), os.Stdout)
				},
			},
		},
	}
}

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
