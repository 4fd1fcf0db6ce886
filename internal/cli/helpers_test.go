package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

type request struct {
	Method string
	Path   string
	User   string
	Body   map[string]any
}

// catalog is an in-memory catalog answering with a fixed status for posts
// and serving records for gets.
type catalog struct {
	srv    *httptest.Server
	status int

	mu       sync.Mutex
	requests []request
	records  map[string]any
}

func newCatalog(t *testing.T, status int) *catalog {
	t.Helper()
	c := &catalog{status: status, records: map[string]any{}}
	c.srv = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *catalog) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	req := request{Method: r.Method, Path: r.URL.Path, User: r.Header.Get("X-User")}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &req.Body)
	}

	c.mu.Lock()
	c.requests = append(c.requests, req)
	record, found := c.records[r.URL.Path]
	c.mu.Unlock()

	if r.Method == http.MethodGet {
		if !found {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(record)
		return
	}
	w.WriteHeader(c.status)
	_, _ = w.Write([]byte(`{"detail":"stub"}`))
}

func (c *catalog) URL() string { return c.srv.URL + "/catalog" }

func (c *catalog) Requests() []request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]request(nil), c.requests...)
}

func (c *catalog) Serve(path string, record any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records["/catalog/"+path] = record
}

// execute runs catalogctl with an empty home directory and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	color.NoColor = true

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const pricesSource = `package prices

func loadPrices(symbol string) ([]float64, error) {
	return get("https://prices.example.com/" + symbol)
}

func loadArchive() error {
	return read("s3://archive/prices.parquet")
}
`
