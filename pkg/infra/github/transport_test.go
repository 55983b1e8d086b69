package github_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghdir/pkg/domain/types"
	githubinfra "github.com/m-mizutani/ghdir/pkg/infra/github"
)

func TestClient_LogsRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /raw/acme/widgets/main/README.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	})
	client := newTestClient(t, mux, githubinfra.WithToken(types.GitHubToken("t0ken")))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.With(context.Background(), logger)

	_, err := client.FetchPublicFile(ctx, "acme", "widgets", "main", "README.md")
	gt.NoError(t, err)

	gt.String(t, buf.String()).Contains(`"path":"/raw/acme/widgets/main/README.md"`)
	gt.String(t, buf.String()).Contains(`"status":200`)
	gt.False(t, bytes.Contains(buf.Bytes(), []byte("t0ken")))
}
