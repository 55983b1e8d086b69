package usecase

import (
	"context"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

const treeMarker = "tree"

// Resolver turns a GitHub web URL into a Location
type Resolver struct {
	githubClient interfaces.GitHubClient
}

// NewResolver creates a new Resolver
func NewResolver(githubClient interfaces.GitHubClient) *Resolver {
	return &Resolver{
		githubClient: githubClient,
	}
}

// splitURL returns the non-empty path segments of rawURL. A URL without
// scheme is read as https.
func splitURL(rawURL string) ([]string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid URL",
			goerr.T(model.ErrTagNotARepository),
			goerr.V("url", rawURL))
	}

	return strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' }), nil
}

// Resolve parses rawURL and determines which part after the tree marker is
// the git reference and which part is the directory. Branch names may
// contain slashes, so prefixes of the remaining segments are probed from the
// shortest to the longest and the first existing one wins.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*model.Location, error) {
	logger := ctxlog.From(ctx)

	parts, err := splitURL(rawURL)
	if err != nil {
		return nil, err
	}

	if len(parts) < 2 {
		return nil, goerr.New("URL does not point at a repository",
			goerr.T(model.ErrTagNotARepository),
			goerr.V("url", rawURL))
	}
	if len(parts) > 2 && parts[2] != treeMarker {
		return nil, goerr.New("URL does not point at a directory",
			goerr.T(model.ErrTagNotADirectory),
			goerr.V("url", rawURL),
			goerr.V("type", parts[2]))
	}

	owner, name := parts[0], parts[1]
	repo, err := r.githubClient.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve repository",
			goerr.V("owner", owner),
			goerr.V("repo", name))
	}

	var rest []string
	if len(parts) > 3 {
		rest = parts[3:]
	}

	switch len(rest) {
	case 0:
		return &model.Location{
			Kind:       model.LocationWholeRepository,
			Repository: *repo,
			ArchiveURL: model.ArchiveURL(owner, name, ""),
		}, nil

	case 1:
		return &model.Location{
			Kind:       model.LocationReference,
			Repository: *repo,
			Reference:  rest[0],
			ArchiveURL: model.ArchiveURL(owner, name, rest[0]),
		}, nil
	}

	for i := 1; i <= len(rest); i++ {
		candidate := strings.Join(rest[:i], "/")
		exists, err := r.githubClient.ReferenceExists(ctx, owner, name, candidate)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to probe reference",
				goerr.V("owner", owner),
				goerr.V("repo", name),
				goerr.V("candidate", candidate))
		}

		logger.Debug("Probed reference", "candidate", candidate, "exists", exists)
		if exists {
			return &model.Location{
				Kind:       model.LocationReference,
				Repository: *repo,
				Reference:  candidate,
				Directory:  strings.Join(rest[i:], "/"),
			}, nil
		}
	}

	return nil, goerr.New("no branch, tag or commit matches the URL",
		goerr.T(model.ErrTagBranchNotFound),
		goerr.V("url", rawURL),
		goerr.V("owner", owner),
		goerr.V("repo", name))
}
