package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// ArchiveResult summarizes an extracted zipball
type ArchiveResult struct {
	Files int
	Bytes int64
}

// Archiver downloads a repository zipball and extracts it in one go
type Archiver struct {
	githubClient interfaces.GitHubClient
	writer       interfaces.FileWriter
	policy       *ContentPolicy
}

// NewArchiver creates a new Archiver
func NewArchiver(githubClient interfaces.GitHubClient, writer interfaces.FileWriter, policy *ContentPolicy) *Archiver {
	return &Archiver{
		githubClient: githubClient,
		writer:       writer,
		policy:       policy,
	}
}

// Extract downloads the zipball of loc and writes its entries under dest
// without the top-level "{owner}-{repo}-{sha}/" directory. Nothing is
// written when an entry is blocked by the content policy. The result is
// returned alongside the error.
func (a *Archiver) Extract(ctx context.Context, loc *model.Location, dest string) (*ArchiveResult, error) {
	logger := ctxlog.From(ctx)
	repo := loc.Repository
	result := &ArchiveResult{}

	zipData, err := a.githubClient.DownloadZipball(ctx, repo.Owner, repo.Name, loc.Reference)
	if err != nil {
		return result, goerr.Wrap(err, "failed to download zipball",
			goerr.T(model.ErrTagDownload),
			goerr.V("repo", repo.FullName()),
			goerr.V("ref", loc.Reference))
	}

	logger.Info("Downloaded zipball",
		"size_bytes", len(zipData),
		"repo", repo.FullName(),
	)

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return result, goerr.Wrap(err, "failed to extract zip", goerr.V("repo", repo.FullName()))
	}

	type entry struct {
		file   *zip.File
		target string
	}
	var entries []entry
	for _, file := range zipReader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		rel := stripTopLevel(file.Name)
		if rel == "" {
			continue
		}
		if err := a.policy.Check(rel); err != nil {
			return result, err
		}
		target, err := LocalPath(dest, "", rel)
		if err != nil {
			return result, goerr.Wrap(err, "failed to extract zip", goerr.V("entry", file.Name))
		}
		entries = append(entries, entry{file: file, target: target})
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, goerr.Wrap(err, "extraction canceled")
		}

		n, err := a.extractFile(e.file, e.target)
		if err != nil {
			return result, err
		}
		result.Files++
		result.Bytes += n
	}

	logger.Info("Extracted zipball",
		"dest", dest,
		"file_count", result.Files,
		"total_size_bytes", result.Bytes,
	)
	return result, nil
}

func (a *Archiver) extractFile(file *zip.File, target string) (int64, error) {
	rc, err := file.Open()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open file in zip", goerr.V("entry", file.Name))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read file in zip", goerr.V("entry", file.Name))
	}

	if err := a.writer.WriteFile(target, data); err != nil {
		return 0, goerr.Wrap(err, "failed to save file",
			goerr.T(model.ErrTagWrite),
			goerr.V("entry", file.Name))
	}
	return int64(len(data)), nil
}

// stripTopLevel removes the first path component of a zip entry name
func stripTopLevel(name string) string {
	idx := strings.Index(name, "/")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}
