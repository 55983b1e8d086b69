package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
	"github.com/m-mizutani/ghdir/pkg/usecase"
)

func newWidgetsClient() *MockGitHubClient {
	return &MockGitHubClient{
		ReferenceExistsFunc: refSet("main"),
		ListTreeFunc:        treeOf(false, "README.md", "docs/a.md", "docs/guide/b.md"),
		FetchPublicFileFunc: func(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
			return []byte("content of " + path), nil
		},
	}
}

func TestClone_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads a directory", func(t *testing.T) {
		client := newWidgetsClient()
		writer := newMemWriter()
		recorder := &eventRecorder{}
		uc := usecase.NewClone(client, writer,
			usecase.WithReporter(recorder),
			usecase.WithRetryPolicy(fastPolicy(2)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.NoError(t, err)
		gt.Equal(t, result.State, model.RunSucceeded)
		gt.Equal(t, result.Destination, "docs")
		gt.Equal(t, result.Files, 2)
		gt.Equal(t, result.Downloaded, 2)
		gt.Value(t, result.RunID).NotEqual("")
		gt.Equal(t, result.Bytes, int64(len("content of docs/a.md")+len("content of docs/guide/b.md")))

		data, ok := writer.Get("docs/a.md")
		gt.True(t, ok)
		gt.Equal(t, string(data), "content of docs/a.md")
		_, ok = writer.Get("docs/guide/b.md")
		gt.True(t, ok)
		_, ok = writer.Get("docs/README.md")
		gt.False(t, ok)

		gt.Equal(t, recorder.Count(model.EventRepositoryIdentified), 1)
		gt.Equal(t, recorder.Count(model.EventDirectoryResolved), 1)
		gt.Equal(t, recorder.Count(model.EventFileCount), 1)
		gt.Equal(t, recorder.Count(model.EventSucceeded), 1)
	})

	t.Run("explicit destination", func(t *testing.T) {
		writer := newMemWriter()
		uc := usecase.NewClone(newWidgetsClient(), writer)

		_, err := uc.Run(ctx, &model.CloneInput{
			URL:         "https://github.com/acme/widgets/tree/main/docs",
			Destination: "out",
		})
		gt.NoError(t, err)
		_, ok := writer.Get("out/guide/b.md")
		gt.True(t, ok)
	})

	t.Run("whole repository goes to the repository name", func(t *testing.T) {
		writer := newMemWriter()
		uc := usecase.NewClone(newWidgetsClient(), writer)

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets"})
		gt.NoError(t, err)
		gt.Equal(t, result.Destination, "widgets")
		gt.Equal(t, result.Downloaded, 3)
		_, ok := writer.Get("widgets/docs/a.md")
		gt.True(t, ok)
	})

	t.Run("blocked URL aborts before resolving", func(t *testing.T) {
		var resolved bool
		client := newWidgetsClient()
		client.GetRepositoryFunc = func(ctx context.Context, owner, repo string) (*model.Repository, error) {
			resolved = true
			return &model.Repository{Owner: owner, Name: repo}, nil
		}
		uc := usecase.NewClone(client, newMemWriter())

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/virus-lab"})
		gt.True(t, goerr.HasTag(err, model.ErrTagBlockedContent))
		gt.Equal(t, result.State, model.RunAborted)
		gt.False(t, resolved)
	})

	t.Run("blocked file writes nothing", func(t *testing.T) {
		client := newWidgetsClient()
		client.ListTreeFunc = treeOf(false, "docs/a.md", "docs/malware.bin")
		writer := newMemWriter()
		uc := usecase.NewClone(client, writer)

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.True(t, goerr.HasTag(err, model.ErrTagBlockedContent))
		gt.Equal(t, result.State, model.RunAborted)
		gt.Equal(t, writer.Len(), 0)
	})

	t.Run("empty directory", func(t *testing.T) {
		client := newWidgetsClient()
		client.ListTreeFunc = treeOf(false, "README.md")
		uc := usecase.NewClone(client, newMemWriter())

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.True(t, goerr.HasTag(err, model.ErrTagNoFiles))
		gt.Equal(t, result.State, model.RunAborted)
	})

	t.Run("resolution error aborts", func(t *testing.T) {
		uc := usecase.NewClone(newWidgetsClient(), newMemWriter())

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/blob/main/README.md"})
		kind, ok := model.ResolutionKindOf(err)
		gt.True(t, ok)
		gt.Equal(t, kind, model.NotADirectory)
		gt.Equal(t, result.State, model.RunAborted)
	})

	t.Run("archive fast path", func(t *testing.T) {
		client := newWidgetsClient()
		client.DownloadZipballFunc = func(ctx context.Context, owner, repo, ref string) ([]byte, error) {
			return createTestZip(t, map[string]string{
				"acme-widgets-abc123/README.md": "readme",
			}), nil
		}
		client.ListTreeFunc = nil
		writer := newMemWriter()
		recorder := &eventRecorder{}
		uc := usecase.NewClone(client, writer, usecase.WithArchive(true), usecase.WithReporter(recorder))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/v1.0.0"})
		gt.NoError(t, err)
		gt.Equal(t, result.State, model.RunSucceeded)
		gt.Equal(t, result.Destination, "widgets")
		gt.Equal(t, result.Downloaded, 1)
		gt.Equal(t, recorder.Count(model.EventArchiveDownload), 1)
		_, ok := writer.Get("widgets/README.md")
		gt.True(t, ok)
	})

	t.Run("archive is not used for a directory", func(t *testing.T) {
		client := newWidgetsClient()
		writer := newMemWriter()
		uc := usecase.NewClone(client, writer, usecase.WithArchive(true))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.NoError(t, err)
		gt.Equal(t, result.Downloaded, 2)
	})
}

func TestClone_PartialFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("download error", func(t *testing.T) {
		var started atomic.Int32
		client := newWidgetsClient()
		client.ListTreeFunc = treeOf(false, "docs/bad.md", "docs/b.md", "docs/c.md", "docs/d.md")
		client.FetchPublicFileFunc = func(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
			started.Add(1)
			if path == "docs/bad.md" {
				return nil, goerr.New("HTTP 500 Internal Server Error for docs/bad.md", goerr.T(model.ErrTagDownload))
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return []byte("late"), nil
			}
		}
		uc := usecase.NewClone(client, newMemWriter(),
			usecase.WithConcurrency(1),
			usecase.WithRetryPolicy(fastPolicy(2)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.Error(t, err)
		gt.Equal(t, result.State, model.RunPartiallyFailed)
		gt.String(t, err.Error()).Contains("Could not download all files")
		gt.Equal(t, result.Downloaded, 0)
		// The failing file is tried twice, then no other download starts.
		gt.Equal(t, started.Load(), int32(2))
	})

	t.Run("untagged error", func(t *testing.T) {
		client := newWidgetsClient()
		client.FetchPublicFileFunc = func(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
			return nil, errors.New("unexpected")
		}
		uc := usecase.NewClone(client, newMemWriter(), usecase.WithRetryPolicy(fastPolicy(1)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.Equal(t, result.State, model.RunPartiallyFailed)
		gt.String(t, err.Error()).Contains("Could not download all files")
	})

	t.Run("write error", func(t *testing.T) {
		client := newWidgetsClient()
		writer := &failingWriter{err: errors.New("no space left on device")}
		uc := usecase.NewClone(client, writer, usecase.WithRetryPolicy(fastPolicy(1)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.Equal(t, result.State, model.RunPartiallyFailed)
		gt.True(t, goerr.HasTag(err, model.ErrTagWrite))
		gt.Equal(t, usecase.FailureMessage(err), "Could not save all files")
	})

	t.Run("path outside destination", func(t *testing.T) {
		client := newWidgetsClient()
		client.ListTreeFunc = treeOf(false, "docs/a.md", "docs/../../escape.md")
		uc := usecase.NewClone(client, newMemWriter(), usecase.WithRetryPolicy(fastPolicy(1)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.Equal(t, result.State, model.RunPartiallyFailed)
		gt.True(t, goerr.HasTag(err, model.ErrTagUnsafePath))
		gt.String(t, err.Error()).Contains("Some files were blocked")
	})

	t.Run("already written files are kept", func(t *testing.T) {
		client := newWidgetsClient()
		client.FetchPublicFileFunc = func(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
			if path == "docs/guide/b.md" {
				return nil, goerr.New("HTTP 404 Not Found for docs/guide/b.md", goerr.T(model.ErrTagDownload))
			}
			return []byte("ok"), nil
		}
		writer := newMemWriter()
		uc := usecase.NewClone(client, writer,
			usecase.WithConcurrency(1),
			usecase.WithRetryPolicy(fastPolicy(1)))

		result, err := uc.Run(ctx, &model.CloneInput{URL: "https://github.com/acme/widgets/tree/main/docs"})
		gt.Error(t, err)
		gt.Equal(t, result.State, model.RunPartiallyFailed)
		gt.Equal(t, result.Downloaded, 1)
		_, ok := writer.Get("docs/a.md")
		gt.True(t, ok)
	})
}

func TestFailureMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"invalid token", goerr.New("x", goerr.T(model.ErrTagInvalidToken)), "Invalid token"},
		{"branch not found", goerr.Wrap(goerr.New("x", goerr.T(model.ErrTagBranchNotFound)), "y"), "Branch, tag or commit not found"},
		{"no files", goerr.New("x", goerr.T(model.ErrTagNoFiles)), "No files to download"},
		{"unsafe path", goerr.New("x", goerr.T(model.ErrTagUnsafePath)), "The repository contains a path outside of the destination"},
		{"untagged", errors.New("boom"), "boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, usecase.FailureMessage(tc.err), tc.expected)
		})
	}
}
