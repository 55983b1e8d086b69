package fs

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o666
)

// Writer implements interfaces.FileWriter on the real file system.
type Writer struct{}

var _ interfaces.FileWriter = (*Writer)(nil)

// New creates a Writer.
func New() *Writer {
	return &Writer{}
}

func (w *Writer) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("path", path))
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("path", path))
	}
	return nil
}
