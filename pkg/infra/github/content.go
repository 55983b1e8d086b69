package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

const lfsPointerPrefix = "version https://git-lfs.github.com/spec/v1"

// Git LFS pointer files are strictly longer than lfsPointerMinSize and
// strictly shorter than lfsPointerMaxSize.
const (
	lfsPointerMinSize = 128
	lfsPointerMaxSize = 140
)

// EscapeFilePath percent-encodes characters of a repository path that would
// otherwise be read as URL syntax, such as '#', '?', '%' and spaces. The
// separator '/' is kept.
func EscapeFilePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

func contentURL(base *url.URL, owner, repo, ref, path string) string {
	u := *base
	u.Path, u.RawPath = "", ""
	return strings.TrimSuffix(u.String(), "/") +
		EscapeFilePath(strings.TrimSuffix(base.Path, "/")+"/"+strings.Join([]string{owner, repo, ref, path}, "/"))
}

// FetchPublicFile downloads path from the raw content host. When the body is
// a Git LFS pointer the real object is fetched from the media host instead.
// The body is always read in full since it is returned either way; the size
// gate only limits which bodies are compared against the pointer prefix.
func (c *Client) FetchPublicFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	data, size, err := c.fetchRaw(ctx, contentURL(c.rawURL, owner, repo, ref, path), path)
	if err != nil {
		return nil, err
	}

	if size <= lfsPointerMinSize || size >= lfsPointerMaxSize {
		return data, nil
	}
	if !bytes.HasPrefix(data, []byte(lfsPointerPrefix)) {
		return data, nil
	}

	media, _, err := c.fetchRaw(ctx, contentURL(c.mediaURL, owner, repo, ref, path), path)
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (c *Client) fetchRaw(ctx context.Context, u, path string) ([]byte, int64, error) {
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to fetch file",
			goerr.T(model.ErrTagDownload),
			goerr.V("path", path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, goerr.New(fmt.Sprintf("HTTP %s for %s", resp.Status, path),
			goerr.T(model.ErrTagDownload),
			goerr.V("status", resp.StatusCode),
			goerr.V("path", path))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to read file",
			goerr.T(model.ErrTagDownload),
			goerr.V("path", path))
	}

	return data, contentLength(resp, data), nil
}

// contentLength prefers the declared length and falls back to the body size
// when the transport removed the header.
func contentLength(resp *http.Response, data []byte) int64 {
	if resp.ContentLength >= 0 {
		return resp.ContentLength
	}
	if v := resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return int64(len(data))
}

// FetchPrivateFile fetches a blob through the API URL of the descriptor and
// decodes its base64 content.
func (c *Client) FetchPrivateFile(ctx context.Context, file *model.FileDescriptor) ([]byte, error) {
	req, err := c.api.NewRequest(http.MethodGet, file.URL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request",
			goerr.T(model.ErrTagDownload),
			goerr.V("url", file.URL))
	}

	var blob github.RepositoryContent
	if _, err := c.api.Do(ctx, req, &blob); err != nil {
		msg := "failed to fetch file"
		if status := statusOf(err); status != 0 {
			msg = fmt.Sprintf("HTTP %d for %s", status, file.Path)
		}
		return nil, classify(err, msg,
			goerr.T(model.ErrTagDownload),
			goerr.V("path", file.Path))
	}

	content, err := blob.GetContent()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode file content",
			goerr.T(model.ErrTagDownload),
			goerr.V("path", file.Path))
	}
	return []byte(content), nil
}
