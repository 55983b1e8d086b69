package model

// RunState is the run-level state of a clone.
type RunState string

const (
	RunResolving       RunState = "resolving"
	RunListing         RunState = "listing"
	RunDownloading     RunState = "downloading"
	RunSucceeded       RunState = "succeeded"
	RunPartiallyFailed RunState = "partially_failed"
	RunAborted         RunState = "aborted"
)

// IsTerminal reports whether the state ends a run.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunSucceeded, RunPartiallyFailed, RunAborted:
		return true
	default:
		return false
	}
}

// CloneInput holds the parameters of one run.
type CloneInput struct {
	URL         string
	Destination string
}

// CloneResult summarizes a run. It is returned alongside the error on failure.
type CloneResult struct {
	RunID       string
	State       RunState
	Location    *Location
	Destination string
	Files       int   // Number of files listed
	Downloaded  int   // Number of files written to disk
	Bytes       int64 // Total bytes written
}
