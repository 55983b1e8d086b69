package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrTagNotARepository     = goerr.NewTag("not_a_repository")
	ErrTagNotADirectory      = goerr.NewTag("not_a_directory")
	ErrTagRepositoryNotFound = goerr.NewTag("repository_not_found")
	ErrTagBranchNotFound     = goerr.NewTag("branch_not_found")

	ErrTagInvalidToken = goerr.NewTag("invalid_token")
	ErrTagRateLimit    = goerr.NewTag("rate_limit")

	ErrTagBlockedContent = goerr.NewTag("blocked_content")
	ErrTagNoFiles        = goerr.NewTag("no_files")
	ErrTagDownload       = goerr.NewTag("download")
	ErrTagWrite          = goerr.NewTag("write")
	ErrTagUnsafePath     = goerr.NewTag("unsafe_path")
)

// ResolutionKind is the reason a URL could not be resolved.
type ResolutionKind string

const (
	NotARepository     ResolutionKind = "NOT_A_REPOSITORY"
	NotADirectory      ResolutionKind = "NOT_A_DIRECTORY"
	RepositoryNotFound ResolutionKind = "REPOSITORY_NOT_FOUND"
	BranchNotFound     ResolutionKind = "BRANCH_NOT_FOUND"
)

// ResolutionKindOf returns the resolution failure carried by err, if any.
func ResolutionKindOf(err error) (ResolutionKind, bool) {
	switch {
	case goerr.HasTag(err, ErrTagNotARepository):
		return NotARepository, true
	case goerr.HasTag(err, ErrTagNotADirectory):
		return NotADirectory, true
	case goerr.HasTag(err, ErrTagRepositoryNotFound):
		return RepositoryNotFound, true
	case goerr.HasTag(err, ErrTagBranchNotFound):
		return BranchNotFound, true
	}
	return "", false
}
