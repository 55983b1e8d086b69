package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/m-mizutani/ghdir/pkg/domain/interfaces"
	"github.com/m-mizutani/ghdir/pkg/domain/model"
	"github.com/m-mizutani/ghdir/pkg/domain/types"
)

const (
	DefaultRawURL   = "https://raw.githubusercontent.com"
	DefaultMediaURL = "https://media.githubusercontent.com/media"

	maxArchiveRedirects = 3
)

// config holds internal client configuration
type config struct {
	token      types.GitHubToken
	httpClient *http.Client
	apiURL     string
	rawURL     string
	mediaURL   string
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithToken attaches the token as a bearer credential to every request
func WithToken(token types.GitHubToken) Option {
	return func(c *config) {
		c.token = token
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithAPIURL overrides the REST API base URL
func WithAPIURL(u string) Option {
	return func(c *config) {
		c.apiURL = u
	}
}

// WithRawURL overrides the raw content host
func WithRawURL(u string) Option {
	return func(c *config) {
		c.rawURL = u
	}
}

// WithMediaURL overrides the Git LFS media host
func WithMediaURL(u string) Option {
	return func(c *config) {
		c.mediaURL = u
	}
}

// Client talks to the GitHub REST API, the raw content host and the LFS
// media host with a single authenticated HTTP client.
type Client struct {
	api      *github.Client
	http     *http.Client
	rawURL   *url.URL
	mediaURL *url.URL
}

var _ interfaces.GitHubClient = (*Client)(nil)

// NewClient creates a new GitHub client. Without a token only public
// repositories are reachable and rate limits are lower.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &config{
		httpClient: &http.Client{},
		rawURL:     DefaultRawURL,
		mediaURL:   DefaultMediaURL,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	base := cfg.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var transport http.RoundTripper = &loggingTransport{base: base}
	if !cfg.token.IsEmpty() {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.token.String()}),
			Base:   transport,
		}
	}
	httpClient := &http.Client{
		Transport:     transport,
		CheckRedirect: cfg.httpClient.CheckRedirect,
		Jar:           cfg.httpClient.Jar,
		Timeout:       cfg.httpClient.Timeout,
	}

	api := github.NewClient(httpClient)
	if cfg.apiURL != "" {
		u, err := parseBaseURL(cfg.apiURL)
		if err != nil {
			return nil, err
		}
		api.BaseURL = u
	}

	rawURL, err := parseBaseURL(cfg.rawURL)
	if err != nil {
		return nil, err
	}
	mediaURL, err := parseBaseURL(cfg.mediaURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:      api,
		http:     httpClient,
		rawURL:   rawURL,
		mediaURL: mediaURL,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid base URL", goerr.V("url", raw))
	}
	return u, nil
}

// GetRepository fetches repository metadata
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*model.Repository, error) {
	r, _, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, goerr.Wrap(err, "repository not found",
				goerr.T(model.ErrTagRepositoryNotFound),
				goerr.V("owner", owner),
				goerr.V("repo", repo))
		}
		return nil, classify(err, "failed to get repository",
			goerr.V("owner", owner),
			goerr.V("repo", repo))
	}

	return &model.Repository{
		Owner:         owner,
		Name:          repo,
		Private:       r.GetPrivate(),
		DefaultBranch: r.GetDefaultBranch(),
	}, nil
}

// ReferenceExists issues a HEAD request against the commits endpoint. Any
// non-2xx answer means the reference does not exist, except authentication
// and rate limit failures which are returned as errors.
func (c *Client) ReferenceExists(ctx context.Context, owner, repo, ref string) (bool, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/commits/%s", owner, repo, escapeSegments(ref))
	req, err := c.api.NewRequest(http.MethodHead, endpoint, nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to create request", goerr.V("ref", ref))
	}

	if _, err := c.api.Do(ctx, req, nil); err != nil {
		if isAuthFailure(err) || statusOf(err) == 0 {
			return false, classify(err, "failed to check reference",
				goerr.V("owner", owner),
				goerr.V("repo", repo),
				goerr.V("ref", ref))
		}
		return false, nil
	}
	return true, nil
}

// ListTree returns every blob of the recursive tree of ref
func (c *Client) ListTree(ctx context.Context, owner, repo, ref string) (*model.FileListing, error) {
	tree, _, err := c.api.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, classify(err, "failed to get tree",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref))
	}

	listing := &model.FileListing{
		Truncated: tree.GetTruncated(),
	}
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		listing.Files = append(listing.Files, &model.FileDescriptor{
			Path: entry.GetPath(),
			URL:  entry.GetURL(),
			SHA:  entry.GetSHA(),
			Size: int64(entry.GetSize()),
		})
	}
	return listing, nil
}

// ListContents walks dir with the contents API, one request per directory
func (c *Client) ListContents(ctx context.Context, owner, repo, ref, dir string) ([]*model.FileDescriptor, error) {
	file, entries, _, err := c.api.Repositories.GetContents(ctx, owner, repo, dir, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, classify(err, "failed to get contents",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref),
			goerr.V("dir", dir))
	}

	if file != nil {
		return []*model.FileDescriptor{toFileDescriptor(file)}, nil
	}

	var files []*model.FileDescriptor
	for _, entry := range entries {
		switch entry.GetType() {
		case "file":
			files = append(files, toFileDescriptor(entry))
		case "dir":
			sub, err := c.ListContents(ctx, owner, repo, ref, entry.GetPath())
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		}
	}
	return files, nil
}

func toFileDescriptor(content *github.RepositoryContent) *model.FileDescriptor {
	return &model.FileDescriptor{
		Path: content.GetPath(),
		URL:  content.GetURL(),
		SHA:  content.GetSHA(),
		Size: int64(content.GetSize()),
	}
}

// DownloadZipball downloads the source code zipball for ref. An empty ref
// selects the default branch.
func (c *Client) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	link, _, err := c.api.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, maxArchiveRedirects)
	if err != nil {
		return nil, classify(err, "failed to get zipball download URL",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref))
	}

	resp, err := c.get(ctx, link.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball", goerr.V("url", link.String()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for zipball",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", link.String()))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read zipball")
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", u))
	}
	return c.http.Do(req)
}

// escapeSegments escapes every path segment of s but keeps the separators.
func escapeSegments(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
