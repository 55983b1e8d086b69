package interfaces

import (
	"context"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API, raw and
// media hosts
type GitHubClient interface {
	// GetRepository fetches repository metadata. A missing repository is
	// reported with model.ErrTagRepositoryNotFound.
	GetRepository(ctx context.Context, owner, repo string) (*model.Repository, error)

	// ReferenceExists checks whether ref names a branch, tag or commit
	ReferenceExists(ctx context.Context, owner, repo, ref string) (bool, error)

	// ListTree returns every blob of the recursive tree of ref
	ListTree(ctx context.Context, owner, repo, ref string) (*model.FileListing, error)

	// ListContents walks dir with the contents API. Slower than ListTree but
	// never truncated.
	ListContents(ctx context.Context, owner, repo, ref, dir string) ([]*model.FileDescriptor, error)

	// FetchPublicFile downloads a file from the raw host, following Git LFS
	// pointers to the media host
	FetchPublicFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error)

	// FetchPrivateFile downloads a file through its API content URL
	FetchPrivateFile(ctx context.Context, file *model.FileDescriptor) ([]byte, error)

	// DownloadZipball downloads the source code zipball for ref
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)
}
