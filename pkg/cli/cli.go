package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghdir/pkg/cli/config"
	"github.com/m-mizutani/ghdir/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		fileCfg     config.File
		loggerCfg   config.Logger
		githubCfg   config.GitHub
		downloadCfg config.Download
		verbose     bool
		logger      *slog.Logger
	)

	var flags []cli.Flag
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, downloadCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "verbose",
		Aliases:     []string{"v"},
		Usage:       "Show every downloaded file",
		Destination: &verbose,
		Sources:     cli.EnvVars("GHDIR_VERBOSE"),
	})

	app := &cli.Command{
		Name:      "ghdir",
		Usage:     "Download a directory of a GitHub repository",
		ArgsUsage: "<url> [destination]",
		Version:   types.Version,
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			values, err := fileCfg.Load()
			if err != nil {
				return nil, err
			}
			if err := values.Apply(c); err != nil {
				return nil, err
			}

			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runClone(ctx, c, &githubCfg, &downloadCfg, verbose)
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
