package model

// EventKind identifies a status event emitted during a run.
type EventKind string

const (
	EventRepositoryIdentified EventKind = "repository_identified"
	EventDirectoryResolved    EventKind = "directory_resolved"
	EventArchiveDownload      EventKind = "archive_download"
	EventListing              EventKind = "listing"
	EventListingTruncated     EventKind = "listing_truncated"
	EventFileCount            EventKind = "file_count"
	EventFileDownload         EventKind = "file_download"
	EventFileSaved            EventKind = "file_saved"
	EventRetry                EventKind = "retry"
	EventSucceeded            EventKind = "succeeded"
	EventFailed               EventKind = "failed"
)

// Event is a status notification with a human readable message and a
// structured payload. Rendering is up to the reporter.
type Event struct {
	Kind    EventKind
	Message string
	Data    map[string]any
}

// IsWarning reports whether the event signals a recoverable problem.
func (e Event) IsWarning() bool {
	return e.Kind == EventRetry || e.Kind == EventListingTruncated
}
