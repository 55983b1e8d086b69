package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
	"github.com/m-mizutani/ghdir/pkg/utils/retry"
)

// Downloader fetches single files with retry and writes them to disk
type Downloader struct {
	githubClient interfaces.GitHubClient
	writer       interfaces.FileWriter
	reporter     interfaces.Reporter
	policy       retry.Policy
}

// NewDownloader creates a new Downloader
func NewDownloader(githubClient interfaces.GitHubClient, writer interfaces.FileWriter, reporter interfaces.Reporter, policy retry.Policy) *Downloader {
	return &Downloader{
		githubClient: githubClient,
		writer:       writer,
		reporter:     reporter,
		policy:       policy,
	}
}

// Fetch downloads the content of file. Private repositories go through the
// API content URL, public ones through the raw host.
func (d *Downloader) Fetch(ctx context.Context, repo model.Repository, ref string, file *model.FileDescriptor) ([]byte, error) {
	policy := d.policy
	policy.OnFailure = func(ctx context.Context, attempt retry.Attempt) {
		ctxlog.From(ctx).Warn("Download attempt failed",
			"path", file.Path,
			"attempt", attempt.Number,
			"retries_left", attempt.RetriesLeft,
			"error", attempt.Err)
		d.reporter.Report(ctx, model.Event{
			Kind: model.EventRetry,
			Message: fmt.Sprintf("%s. Attempt %d failed. There are %d retries left.",
				attempt.Err.Error(), attempt.Number, attempt.RetriesLeft),
			Data: map[string]any{
				"path":         file.Path,
				"attempt":      attempt.Number,
				"retries_left": attempt.RetriesLeft,
			},
		})
	}

	return retry.Do(ctx, policy, func(ctx context.Context) ([]byte, error) {
		if repo.Private {
			return d.githubClient.FetchPrivateFile(ctx, file)
		}
		return d.githubClient.FetchPublicFile(ctx, repo.Owner, repo.Name, ref, file.Path)
	})
}

// Download fetches file and writes it under dest. It returns the number of
// bytes written.
func (d *Downloader) Download(ctx context.Context, loc *model.Location, file *model.FileDescriptor, dest string) (int64, error) {
	target, err := LocalPath(dest, loc.Directory, file.Path)
	if err != nil {
		return 0, err
	}

	d.reporter.Report(ctx, model.Event{
		Kind:    model.EventFileDownload,
		Message: fmt.Sprintf("Downloading %s", file.Path),
		Data:    map[string]any{"path": file.Path, "size": file.Size},
	})

	data, err := d.Fetch(ctx, loc.Repository, loc.GitReference(), file)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to download file",
			goerr.V("path", file.Path))
	}

	if err := d.writer.WriteFile(target, data); err != nil {
		return 0, goerr.Wrap(err, "failed to save file",
			goerr.T(model.ErrTagWrite),
			goerr.V("path", file.Path),
			goerr.V("target", target))
	}

	d.reporter.Report(ctx, model.Event{
		Kind:    model.EventFileSaved,
		Message: fmt.Sprintf("Saved %s", target),
		Data:    map[string]any{"path": file.Path, "target": target, "bytes": int64(len(data))},
	})

	return int64(len(data)), nil
}

// LocalPath maps a repository path to its location under dest by removing
// the dir prefix. Paths resolving outside of dest are rejected.
func LocalPath(dest, dir, repoPath string) (string, error) {
	rel := repoPath
	if dir != "" {
		rel = strings.TrimPrefix(repoPath, dir+"/")
	}

	root := filepath.Clean(dest)
	target := filepath.Join(root, filepath.FromSlash(rel))

	within, err := filepath.Rel(root, target)
	if err != nil || within == "." || within == ".." || strings.HasPrefix(within, ".."+string(os.PathSeparator)) {
		return "", goerr.New("invalid file path detected",
			goerr.T(model.ErrTagUnsafePath),
			goerr.V("path", repoPath),
			goerr.V("dest", dest))
	}
	return target, nil
}
