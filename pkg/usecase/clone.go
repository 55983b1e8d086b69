package usecase

import (
	"context"
	"fmt"
	"path"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
	"github.com/m-mizutani/ghdir/pkg/utils/async"
	"github.com/m-mizutani/ghdir/pkg/utils/retry"
)

// DefaultConcurrency is the number of files downloaded at the same time
const DefaultConcurrency = 20

// cloneConfig holds internal configuration of the clone use case
type cloneConfig struct {
	concurrency int
	retryPolicy retry.Policy
	archive     bool
	policy      *ContentPolicy
	reporter    interfaces.Reporter
}

// CloneOption is a functional option for NewClone
type CloneOption func(*cloneConfig)

// WithConcurrency sets the number of parallel downloads
func WithConcurrency(n int) CloneOption {
	return func(c *cloneConfig) {
		c.concurrency = n
	}
}

// WithRetryPolicy sets the per-file retry policy
func WithRetryPolicy(p retry.Policy) CloneOption {
	return func(c *cloneConfig) {
		c.retryPolicy = p
	}
}

// WithArchive enables downloading a single zipball when the URL designates
// a whole repository or a reference root
func WithArchive(enabled bool) CloneOption {
	return func(c *cloneConfig) {
		c.archive = enabled
	}
}

// WithContentPolicy replaces the default blocked content policy. nil
// disables the check.
func WithContentPolicy(p *ContentPolicy) CloneOption {
	return func(c *cloneConfig) {
		c.policy = p
	}
}

// WithReporter sets the status event sink
func WithReporter(r interfaces.Reporter) CloneOption {
	return func(c *cloneConfig) {
		c.reporter = r
	}
}

type cloneUseCase struct {
	cfg        *cloneConfig
	resolver   *Resolver
	lister     *Lister
	downloader *Downloader
	archiver   *Archiver
}

// NewClone creates the use case downloading a GitHub directory
func NewClone(githubClient interfaces.GitHubClient, writer interfaces.FileWriter, opts ...CloneOption) interfaces.CloneUseCase {
	defaultPolicy, _ := NewContentPolicy(DefaultBlockedPattern)
	cfg := &cloneConfig{
		concurrency: DefaultConcurrency,
		retryPolicy: retry.DefaultPolicy(),
		policy:      defaultPolicy,
		reporter:    interfaces.ReporterFunc(func(context.Context, model.Event) {}),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cloneUseCase{
		cfg:        cfg,
		resolver:   NewResolver(githubClient),
		lister:     NewLister(githubClient, cfg.reporter),
		downloader: NewDownloader(githubClient, writer, cfg.reporter, cfg.retryPolicy),
		archiver:   NewArchiver(githubClient, writer, cfg.policy),
	}
}

const (
	msgIncomplete  = "Could not download all files"
	msgNotSaved    = "Could not save all files"
	msgSomeBlocked = "Some files were blocked from downloading"
)

var errTagPartial = goerr.NewTag("partial")

// partialMessage summarizes the error that stopped a download run
func partialMessage(err error) string {
	switch {
	case goerr.HasTag(err, model.ErrTagWrite):
		return msgNotSaved
	case goerr.HasTag(err, model.ErrTagUnsafePath), goerr.HasTag(err, model.ErrTagBlockedContent):
		return msgSomeBlocked
	}
	return msgIncomplete
}

// FailureMessage turns a run error into a short message for the user
func FailureMessage(err error) string {
	switch {
	case goerr.HasTag(err, errTagPartial):
		return partialMessage(err)
	case goerr.HasTag(err, model.ErrTagInvalidToken):
		return "Invalid token"
	case goerr.HasTag(err, model.ErrTagRateLimit):
		return "Rate limit exceeded. Provide a token with --token or GITHUB_TOKEN to raise the limit"
	case goerr.HasTag(err, model.ErrTagBlockedContent):
		return "Downloading this content is not allowed"
	case goerr.HasTag(err, model.ErrTagNoFiles):
		return "No files to download"
	case goerr.HasTag(err, model.ErrTagUnsafePath):
		return "The repository contains a path outside of the destination"
	}

	if kind, ok := model.ResolutionKindOf(err); ok {
		switch kind {
		case model.NotARepository:
			return "The URL does not point at a GitHub repository"
		case model.NotADirectory:
			return "The URL does not point at a directory"
		case model.RepositoryNotFound:
			return "Repository not found. If it is private, provide a token with --token or GITHUB_TOKEN"
		case model.BranchNotFound:
			return "Branch, tag or commit not found"
		}
	}
	return err.Error()
}

// defaultDestination is the last directory segment, or the repository name
func defaultDestination(loc *model.Location) string {
	if loc.Directory != "" {
		return path.Base(loc.Directory)
	}
	return loc.Repository.Name
}

func (uc *cloneUseCase) report(ctx context.Context, kind model.EventKind, msg string, data map[string]any) {
	uc.cfg.reporter.Report(ctx, model.Event{Kind: kind, Message: msg, Data: data})
}

// Run resolves the URL, lists the files and downloads them
func (uc *cloneUseCase) Run(ctx context.Context, input *model.CloneInput) (*model.CloneResult, error) {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	result := &model.CloneResult{
		RunID: runID,
		State: model.RunResolving,
	}

	fail := func(state model.RunState, err error) (*model.CloneResult, error) {
		result.State = state
		logger.Warn("Clone failed", "state", state, "error", err)
		uc.report(ctx, model.EventFailed, FailureMessage(err), map[string]any{"state": string(state)})
		return result, err
	}

	logger.Info("Starting clone", "url", input.URL)

	if err := uc.cfg.policy.Check(input.URL); err != nil {
		return fail(model.RunAborted, err)
	}

	loc, err := uc.resolver.Resolve(ctx, input.URL)
	if err != nil {
		return fail(model.RunAborted, err)
	}
	result.Location = loc

	result.Destination = input.Destination
	if result.Destination == "" {
		result.Destination = defaultDestination(loc)
	}

	repo := loc.Repository
	visibility := "public"
	if repo.Private {
		visibility = "private"
	}
	uc.report(ctx, model.EventRepositoryIdentified,
		fmt.Sprintf("Repository: %s (%s)", repo.FullName(), visibility),
		map[string]any{"repo": repo.FullName(), "private": repo.Private, "ref": loc.GitReference()})
	if loc.Directory != "" {
		uc.report(ctx, model.EventDirectoryResolved,
			fmt.Sprintf("Directory: %s", loc.Directory),
			map[string]any{"dir": loc.Directory})
	}

	if uc.cfg.archive && loc.ArchiveURL != "" {
		return uc.runArchive(ctx, result, fail)
	}

	result.State = model.RunListing
	uc.report(ctx, model.EventListing, "Retrieving directory info", map[string]any{"dir": loc.Directory})

	files, err := uc.lister.List(ctx, repo, loc.GitReference(), loc.Directory)
	if err != nil {
		return fail(model.RunAborted, err)
	}
	result.Files = len(files)

	if len(files) == 0 {
		return fail(model.RunAborted, goerr.New("no files to download",
			goerr.T(model.ErrTagNoFiles),
			goerr.V("repo", repo.FullName()),
			goerr.V("dir", loc.Directory)))
	}
	if err := uc.cfg.policy.CheckFiles(files); err != nil {
		return fail(model.RunAborted, err)
	}

	result.State = model.RunDownloading
	uc.report(ctx, model.EventFileCount,
		fmt.Sprintf("Downloading %d files", len(files)),
		map[string]any{"count": len(files)})

	var downloaded, written atomic.Int64
	group := async.NewGroup(ctx, uc.cfg.concurrency)
	for _, file := range files {
		group.Go(func(ctx context.Context) error {
			n, err := uc.downloader.Download(ctx, loc, file, result.Destination)
			if err != nil {
				return err
			}
			downloaded.Add(1)
			written.Add(n)
			return nil
		})
	}
	err = group.Wait()

	result.Downloaded = int(downloaded.Load())
	result.Bytes = written.Load()

	if err != nil {
		return fail(model.RunPartiallyFailed, goerr.Wrap(err, partialMessage(err),
			goerr.T(errTagPartial),
			goerr.V("downloaded", result.Downloaded),
			goerr.V("files", result.Files)))
	}

	return uc.succeed(ctx, result)
}

func (uc *cloneUseCase) runArchive(ctx context.Context, result *model.CloneResult, fail func(model.RunState, error) (*model.CloneResult, error)) (*model.CloneResult, error) {
	loc := result.Location
	result.State = model.RunDownloading
	uc.report(ctx, model.EventArchiveDownload,
		fmt.Sprintf("Downloading archive of %s", loc.Repository.FullName()),
		map[string]any{"url": loc.ArchiveURL})

	archive, err := uc.archiver.Extract(ctx, loc, result.Destination)
	result.Files = archive.Files
	result.Downloaded = archive.Files
	result.Bytes = archive.Bytes
	if err != nil {
		state := model.RunAborted
		if archive.Files > 0 {
			state = model.RunPartiallyFailed
		}
		return fail(state, err)
	}

	return uc.succeed(ctx, result)
}

func (uc *cloneUseCase) succeed(ctx context.Context, result *model.CloneResult) (*model.CloneResult, error) {
	result.State = model.RunSucceeded
	ctxlog.From(ctx).Info("Clone completed",
		"dest", result.Destination,
		"files", result.Downloaded,
		"bytes", result.Bytes)
	uc.report(ctx, model.EventSucceeded,
		fmt.Sprintf("Saved %d files (%s) to %s", result.Downloaded, humanize.Bytes(uint64(result.Bytes)), result.Destination),
		map[string]any{
			"dest":  result.Destination,
			"files": result.Downloaded,
			"bytes": result.Bytes,
		})
	return result, nil
}
