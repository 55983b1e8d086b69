package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// MockGitHubClient is a mock implementation of GitHubClient
type MockGitHubClient struct {
	GetRepositoryFunc    func(ctx context.Context, owner, repo string) (*model.Repository, error)
	ReferenceExistsFunc  func(ctx context.Context, owner, repo, ref string) (bool, error)
	ListTreeFunc         func(ctx context.Context, owner, repo, ref string) (*model.FileListing, error)
	ListContentsFunc     func(ctx context.Context, owner, repo, ref, dir string) ([]*model.FileDescriptor, error)
	FetchPublicFileFunc  func(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
	FetchPrivateFileFunc func(ctx context.Context, file *model.FileDescriptor) ([]byte, error)
	DownloadZipballFunc  func(ctx context.Context, owner, repo, ref string) ([]byte, error)

	mu     sync.Mutex
	probed []string
}

var _ interfaces.GitHubClient = (*MockGitHubClient)(nil)

var errNotConfigured = errors.New("mock not configured")

func (m *MockGitHubClient) GetRepository(ctx context.Context, owner, repo string) (*model.Repository, error) {
	if m.GetRepositoryFunc != nil {
		return m.GetRepositoryFunc(ctx, owner, repo)
	}
	return &model.Repository{Owner: owner, Name: repo, DefaultBranch: "main"}, nil
}

func (m *MockGitHubClient) ReferenceExists(ctx context.Context, owner, repo, ref string) (bool, error) {
	m.mu.Lock()
	m.probed = append(m.probed, ref)
	m.mu.Unlock()
	if m.ReferenceExistsFunc != nil {
		return m.ReferenceExistsFunc(ctx, owner, repo, ref)
	}
	return false, errNotConfigured
}

func (m *MockGitHubClient) ListTree(ctx context.Context, owner, repo, ref string) (*model.FileListing, error) {
	if m.ListTreeFunc != nil {
		return m.ListTreeFunc(ctx, owner, repo, ref)
	}
	return nil, errNotConfigured
}

func (m *MockGitHubClient) ListContents(ctx context.Context, owner, repo, ref, dir string) ([]*model.FileDescriptor, error) {
	if m.ListContentsFunc != nil {
		return m.ListContentsFunc(ctx, owner, repo, ref, dir)
	}
	return nil, errNotConfigured
}

func (m *MockGitHubClient) FetchPublicFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	if m.FetchPublicFileFunc != nil {
		return m.FetchPublicFileFunc(ctx, owner, repo, ref, path)
	}
	return nil, errNotConfigured
}

func (m *MockGitHubClient) FetchPrivateFile(ctx context.Context, file *model.FileDescriptor) ([]byte, error) {
	if m.FetchPrivateFileFunc != nil {
		return m.FetchPrivateFileFunc(ctx, file)
	}
	return nil, errNotConfigured
}

func (m *MockGitHubClient) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	if m.DownloadZipballFunc != nil {
		return m.DownloadZipballFunc(ctx, owner, repo, ref)
	}
	return nil, errNotConfigured
}

// Probed returns the references checked so far, in order
func (m *MockGitHubClient) Probed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probed...)
}

// memWriter records written files in memory
type memWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemWriter() *memWriter {
	return &memWriter{files: map[string][]byte{}}
}

func (w *memWriter) WriteFile(path string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[filepath.ToSlash(path)] = data
	return nil
}

func (w *memWriter) Get(path string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[path]
	return data, ok
}

func (w *memWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// failingWriter rejects every write with err
type failingWriter struct {
	err error
}

func (w *failingWriter) WriteFile(path string, data []byte) error {
	return w.err
}

// eventRecorder collects reported events
type eventRecorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *eventRecorder) Report(ctx context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) Kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []model.EventKind
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *eventRecorder) Count(kind model.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// refSet returns a ReferenceExistsFunc accepting only refs
func refSet(refs ...string) func(ctx context.Context, owner, repo, ref string) (bool, error) {
	set := map[string]bool{}
	for _, r := range refs {
		set[r] = true
	}
	return func(ctx context.Context, owner, repo, ref string) (bool, error) {
		return set[ref], nil
	}
}
