package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/usecase"
	"github.com/m-mizutani/ghdir/pkg/utils/retry"
)

// Download holds download pipeline configuration
type Download struct {
	Concurrency    int
	Attempts       int
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
	BlockedPattern string
	Archive        bool
}

// Flags returns CLI flags for download configuration
func (c *Download) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "concurrency",
			Aliases:     []string{"c"},
			Usage:       "Number of files downloaded in parallel",
			Value:       usecase.DefaultConcurrency,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("GHDIR_CONCURRENCY"),
		},
		&cli.IntFlag{
			Name:        "attempts",
			Usage:       "Attempts per file before giving up",
			Value:       retry.DefaultMaxAttempts,
			Destination: &c.Attempts,
			Sources:     cli.EnvVars("GHDIR_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "min-backoff",
			Usage:       "Initial delay between attempts",
			Value:       retry.DefaultMinBackoff,
			Destination: &c.MinBackoff,
			Sources:     cli.EnvVars("GHDIR_MIN_BACKOFF"),
		},
		&cli.DurationFlag{
			Name:        "max-backoff",
			Usage:       "Maximum delay between attempts",
			Value:       retry.DefaultMaxBackoff,
			Destination: &c.MaxBackoff,
			Sources:     cli.EnvVars("GHDIR_MAX_BACKOFF"),
		},
		&cli.StringFlag{
			Name:        "blocked-pattern",
			Usage:       "Regular expression of URLs and paths that are never downloaded, empty to disable",
			Value:       usecase.DefaultBlockedPattern,
			Destination: &c.BlockedPattern,
			Sources:     cli.EnvVars("GHDIR_BLOCKED_PATTERN"),
		},
		&cli.BoolFlag{
			Name:        "archive",
			Usage:       "Download a single zipball when the URL points at a repository or reference root",
			Destination: &c.Archive,
			Sources:     cli.EnvVars("GHDIR_ARCHIVE"),
		},
	}
}

// RetryPolicy returns the per-file retry policy
func (c *Download) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Attempts,
		MinBackoff:  c.MinBackoff,
		MaxBackoff:  c.MaxBackoff,
	}
}

// CloneOptions converts the configuration into use case options
func (c *Download) CloneOptions(reporter interfaces.Reporter) ([]usecase.CloneOption, error) {
	policy, err := usecase.NewContentPolicy(c.BlockedPattern)
	if err != nil {
		return nil, err
	}

	return []usecase.CloneOption{
		usecase.WithConcurrency(c.Concurrency),
		usecase.WithRetryPolicy(c.RetryPolicy()),
		usecase.WithContentPolicy(policy),
		usecase.WithArchive(c.Archive),
		usecase.WithReporter(reporter),
	}, nil
}
