package model

import "fmt"

// Repository identifies a GitHub repository and the visibility captured from
// its metadata. It is resolved once per run.
type Repository struct {
	Owner         string
	Name          string
	Private       bool
	DefaultBranch string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// LocationKind tells how a URL was resolved.
type LocationKind string

const (
	// LocationWholeRepository means no git reference followed the view marker.
	LocationWholeRepository LocationKind = "whole_repository"
	// LocationReference means a specific reference and a (possibly empty) directory.
	LocationReference LocationKind = "reference"
)

const archiveBaseURL = "https://api.github.com/repos"

// ArchiveURL builds the zipball URL of a repository. An empty ref points at
// the default branch.
func ArchiveURL(owner, repo, ref string) string {
	if ref == "" {
		return fmt.Sprintf("%s/%s/%s/zipball", archiveBaseURL, owner, repo)
	}
	return fmt.Sprintf("%s/%s/%s/zipball/%s", archiveBaseURL, owner, repo, ref)
}

// Location is the result of resolving a GitHub web URL.
type Location struct {
	Kind       LocationKind
	Repository Repository
	// Reference is a branch, tag or commit. Empty for LocationWholeRepository.
	Reference string
	// Directory never includes the reference prefix.
	Directory string
	// ArchiveURL is set when the location can be fetched as a single zipball.
	ArchiveURL string
}

// GitReference returns the reference used for listing and downloading. The
// default branch stands in when the URL carried no reference.
func (l *Location) GitReference() string {
	if l.Reference != "" {
		return l.Reference
	}
	if l.Repository.DefaultBranch != "" {
		return l.Repository.DefaultBranch
	}
	return "HEAD"
}
