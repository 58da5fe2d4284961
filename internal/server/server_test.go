package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name            string
		cfg             Config
		wantControlling any
	}{
		{"without controller", Config{}, nil},
		{"idle", Config{Controller: &stubController{}}, false},
		{"controlling", Config{Controller: &stubController{controlling: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tt.cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body["status"] != "ok" {
				t.Errorf("expected status 'ok', got %v", body["status"])
			}
			if _, ok := body["uptime"]; !ok {
				t.Error("expected 'uptime' field in response")
			}
			if got := body["controlling"]; got != tt.wantControlling {
				t.Errorf("expected controlling %v, got %v", tt.wantControlling, got)
			}
		})
	}

	rec := httptest.NewRecorder()
	New(Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestServer_RoutesFollowDependencies(t *testing.T) {
	paths := []string{"/api/keymaps", "/api/actions", "/api/control", "/api/stream", "/api/monitor"}

	bare := New(Config{})
	for _, path := range paths {
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s without dependencies: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}

	full := New(Config{Store: newTestStore(t), Controller: &stubController{}})
	for _, path := range []string{"/api/keymaps", "/api/actions", "/api/control"} {
		rec := httptest.NewRecorder()
		full.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	page := "<html><body>monitor</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/", http.StatusOK},
		{"/missing.js", http.StatusNotFound},
		{"/api/nonexistent", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.wantCode {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.wantCode, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != page {
		t.Errorf("expected body %q, got %q", page, rec.Body.String())
	}
}
