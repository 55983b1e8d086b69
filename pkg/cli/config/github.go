package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghdir/pkg/domain/types"
	githubinfra "github.com/m-mizutani/ghdir/pkg/infra/github"
)

// GitHub holds GitHub access configuration
type GitHub struct {
	Token    string
	APIURL   string
	RawURL   string
	MediaURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token",
			Usage:       "GitHub token, required for private repositories",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GHDIR_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "api-url",
			Usage:       "GitHub REST API base URL",
			Value:       "https://api.github.com/",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("GHDIR_API_URL"),
		},
		&cli.StringFlag{
			Name:        "raw-url",
			Usage:       "Raw content base URL",
			Value:       githubinfra.DefaultRawURL,
			Destination: &c.RawURL,
			Sources:     cli.EnvVars("GHDIR_RAW_URL"),
		},
		&cli.StringFlag{
			Name:        "media-url",
			Usage:       "Git LFS media base URL",
			Value:       githubinfra.DefaultMediaURL,
			Destination: &c.MediaURL,
			Sources:     cli.EnvVars("GHDIR_MEDIA_URL"),
		},
	}
}

// GitHubToken returns the configured token
func (c *GitHub) GitHubToken() types.GitHubToken {
	return types.GitHubToken(c.Token)
}

// NewClient builds the GitHub client from the configuration
func (c *GitHub) NewClient() (*githubinfra.Client, error) {
	return githubinfra.NewClient(
		githubinfra.WithToken(c.GitHubToken()),
		githubinfra.WithAPIURL(c.APIURL),
		githubinfra.WithRawURL(c.RawURL),
		githubinfra.WithMediaURL(c.MediaURL),
	)
}
