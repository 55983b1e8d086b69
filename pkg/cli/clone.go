package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghdir/pkg/cli/config"
	"github.com/m-mizutani/ghdir/pkg/controller/console"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
	"github.com/m-mizutani/ghdir/pkg/infra/fs"
	"github.com/m-mizutani/ghdir/pkg/usecase"
)

func runClone(ctx context.Context, c *cli.Command, githubCfg *config.GitHub, downloadCfg *config.Download, verbose bool) error {
	if c.Args().Len() < 1 {
		return goerr.New("GitHub URL is required")
	}
	input := &model.CloneInput{
		URL:         c.Args().Get(0),
		Destination: c.Args().Get(1),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := ctxlog.From(ctx)
	logger.Debug("Starting ghdir",
		"url", input.URL,
		"dest", input.Destination,
		"token", githubCfg.GitHubToken(),
		"concurrency", downloadCfg.Concurrency,
		"archive", downloadCfg.Archive,
	)

	client, err := githubCfg.NewClient()
	if err != nil {
		return goerr.Wrap(err, "failed to create GitHub client")
	}

	reporter := console.New(os.Stderr,
		console.WithVerbose(verbose),
		console.WithProgress(isatty.IsTerminal(os.Stderr.Fd())),
	)
	opts, err := downloadCfg.CloneOptions(reporter)
	if err != nil {
		return err
	}

	uc := usecase.NewClone(client, fs.New(), opts...)
	if _, err := uc.Run(ctx, input); err != nil {
		return err
	}
	return nil
}
