package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// Lister enumerates the files under a directory
type Lister struct {
	githubClient interfaces.GitHubClient
	reporter     interfaces.Reporter
}

// NewLister creates a new Lister
func NewLister(githubClient interfaces.GitHubClient, reporter interfaces.Reporter) *Lister {
	return &Lister{
		githubClient: githubClient,
		reporter:     reporter,
	}
}

// List returns every file under dir at ref. An empty dir lists the whole
// tree. A truncated tree response falls back to walking the contents API.
func (l *Lister) List(ctx context.Context, repo model.Repository, ref, dir string) ([]*model.FileDescriptor, error) {
	logger := ctxlog.From(ctx)

	listing, err := l.githubClient.ListTree(ctx, repo.Owner, repo.Name, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list files",
			goerr.V("repo", repo.FullName()),
			goerr.V("ref", ref))
	}

	if listing.Truncated {
		logger.Warn("Tree listing truncated, falling back to contents API",
			"repo", repo.FullName(),
			"ref", ref,
			"dir", dir)
		l.reporter.Report(ctx, model.Event{
			Kind:    model.EventListingTruncated,
			Message: "Warning: It's a large repository and it may take a long time to download it.",
			Data:    map[string]any{"repo": repo.FullName(), "dir": dir},
		})

		files, err := l.githubClient.ListContents(ctx, repo.Owner, repo.Name, ref, dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list files with contents API",
				goerr.V("repo", repo.FullName()),
				goerr.V("ref", ref),
				goerr.V("dir", dir))
		}
		return files, nil
	}

	if dir == "" {
		return listing.Files, nil
	}

	prefix := dir + "/"
	var files []*model.FileDescriptor
	for _, file := range listing.Files {
		if strings.HasPrefix(file.Path, prefix) {
			files = append(files, file)
		}
	}
	return files, nil
}
