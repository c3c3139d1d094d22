// Package testenv runs an in-process chitlens server over real storage for API tests.
package testenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/chitlens/internal/app"
	"github.com/bobmcallan/chitlens/internal/common"
	"github.com/bobmcallan/chitlens/internal/server"
	tcommon "github.com/bobmcallan/chitlens/tests/common"
)

// EnvOptions configures the test environment
type EnvOptions struct {
	// Backend selects the storage backend ("sqlite", "postgres" or "surrealdb").
	// Defaults to CHITLENS_TEST_BACKEND, then sqlite.
	Backend string
	// ReferenceRatePct overrides the configured benchmark rate when non-zero.
	ReferenceRatePct float64
}

// Env is an isolated chitlens server running in-process over real storage
type Env struct {
	t          *testing.T
	app        *app.App
	server     *httptest.Server
	ctx        context.Context
	cancel     context.CancelFunc
	ResultsDir string
}

// NewEnv creates a new isolated test environment with default options.
func NewEnv(t *testing.T) *Env {
	return NewEnvWithOptions(t, EnvOptions{})
}

// NewEnvWithOptions creates a new isolated test environment with custom options.
// Container-backed environments are skipped in -short mode.
func NewEnvWithOptions(t *testing.T, opts EnvOptions) *Env {
	t.Helper()

	backend := opts.Backend
	if backend == "" {
		backend = os.Getenv("CHITLENS_TEST_BACKEND")
	}
	if backend == "" {
		backend = common.BackendSQLite
	}
	if backend != common.BackendSQLite && testing.Short() {
		t.Skipf("%s backend needs Docker, skipping in short mode", backend)
		return nil
	}

	config := common.NewDefaultConfig()
	config.Environment = "test"
	config.RateLimit = common.RateLimitConfig{}
	if opts.ReferenceRatePct != 0 {
		config.Analytics.ReferenceRatePct = opts.ReferenceRatePct
	}
	config.Storage = tcommon.StorageConfig(t, backend)

	timeout := 60 * time.Second
	if envTimeout := os.Getenv("CHITLENS_TEST_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			timeout = d
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	a, err := app.NewAppWithConfig(ctx, config, common.NewSilentLogger())
	if err != nil {
		cancel()
		t.Fatalf("Failed to start app on %s: %v", backend, err)
	}

	env := &Env{
		t:          t,
		app:        a,
		server:     httptest.NewServer(server.NewServer(a).Handler()),
		ctx:        ctx,
		cancel:     cancel,
		ResultsDir: resultsDir(t),
	}
	t.Logf("Test server started (backend: %s, url: %s)", backend, env.server.URL)
	return env
}

// resultsDir keeps saved responses under tests/results when CHITLENS_TEST_RESULTS=true,
// otherwise in a temp dir removed with the test.
func resultsDir(t *testing.T) string {
	if os.Getenv("CHITLENS_TEST_RESULTS") != "true" {
		return t.TempDir()
	}
	datetime := time.Now().Format("20060102-150405")
	dir := filepath.Join(findProjectRoot(), "tests", "results", datetime+"-"+strings.ReplaceAll(t.Name(), "/", "_"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create results dir: %v", err)
	}
	return dir
}

// Cleanup stops the server and closes storage
func (e *Env) Cleanup() {
	if e == nil {
		return
	}
	if e.server != nil {
		e.server.Close()
	}
	if e.app != nil {
		e.app.Close()
	}
	if e.cancel != nil {
		e.cancel()
	}
}

// Context returns the test context
func (e *Env) Context() context.Context {
	return e.ctx
}

// App exposes the running app for direct store access.
func (e *Env) App() *app.App {
	return e.app
}

// HTTPGet sends a GET request to path on the test server.
func (e *Env) HTTPGet(path string) (*http.Response, error) {
	return e.HTTPRequest(http.MethodGet, path, nil)
}

// HTTPPost sends body to path as JSON. Strings and byte slices are sent verbatim.
func (e *Env) HTTPPost(path string, body interface{}) (*http.Response, error) {
	return e.HTTPRequest(http.MethodPost, path, body)
}

// HTTPPut sends body to path as JSON.
func (e *Env) HTTPPut(path string, body interface{}) (*http.Response, error) {
	return e.HTTPRequest(http.MethodPut, path, body)
}

// HTTPDelete sends a DELETE request to path.
func (e *Env) HTTPDelete(path string) (*http.Response, error) {
	return e.HTTPRequest(http.MethodDelete, path, nil)
}

// HTTPRequest sends a request with an optional body to the test server.
func (e *Env) HTTPRequest(method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
		if !strings.HasPrefix(strings.TrimSpace(b), "{") {
			contentType = "text/csv"
		}
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.ctx, method, e.server.URL+path, reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	return e.server.Client().Do(req)
}

// DecodeJSON reads and decodes a response body, saving the raw body under name when set.
func (e *Env) DecodeJSON(resp *http.Response, name string, v interface{}) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if name != "" {
		if err := e.SaveResult(name+".json", []byte(FormatJSON(data))); err != nil {
			e.t.Logf("Warning: failed to save result %s: %v", name, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response %q: %w", truncate(string(data), 200), err)
	}
	return nil
}

// SaveResult saves test output to the results directory
func (e *Env) SaveResult(name string, data []byte) error {
	return os.WriteFile(filepath.Join(e.ResultsDir, name), data, 0644)
}

// findProjectRoot walks up directories to find go.mod
func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

// FormatJSON indents JSON for saved results, returning the input unchanged if it is not JSON.
func FormatJSON(data []byte) string {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	formatted, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(formatted)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
