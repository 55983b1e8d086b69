package model

// FileDescriptor is one remote file to download.
type FileDescriptor struct {
	// Path is repository-relative and includes the target directory prefix.
	Path string
	// URL is the API URL of the file content, used for private repositories.
	URL  string
	SHA  string
	Size int64
}

// FileListing is a batch of files returned by the tree API.
type FileListing struct {
	Files     []*FileDescriptor
	Truncated bool
}
