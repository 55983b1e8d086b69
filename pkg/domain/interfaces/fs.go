package interfaces

// FileWriter abstracts the local file system
type FileWriter interface {
	// WriteFile creates parent directories as needed and overwrites path
	WriteFile(path string, data []byte) error
}
