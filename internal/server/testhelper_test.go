package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/chitlens/internal/app"
	"github.com/bobmcallan/chitlens/internal/common"
)

// newTestServer builds a Server over a temp SQLite store with rate limiting off.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Storage.DSN = filepath.Join(t.TempDir(), "chitlens.db")
	config.RateLimit.RequestsPerSecond = 0

	a, err := app.NewAppWithConfig(context.Background(), config, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("NewAppWithConfig failed: %v", err)
	}
	t.Cleanup(a.Close)
	return NewServer(a)
}

// do sends a request through the full handler stack. body may be a string or a value to JSON-encode.
func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func expectErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	var body ErrorResponse
	decodeBody(t, rr, &body)
	if body.Code != code {
		t.Errorf("Expected code %q, got %q (%s)", code, body.Code, body.Error)
	}
}

