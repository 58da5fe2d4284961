package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/keymap"
	"github.com/ayusman/mudra/internal/store"
)

const iniBody = `labels = open!x0x?fist!x0x?copy
key-shortcuts = !x0x?!x0x?KEY_Command+KEY_C
mouse-actions = 0!x0x?1
`

func createProfile(t *testing.T, s *store.Store, name string) *store.Keymap {
	t.Helper()
	k := &store.Keymap{
		Name:      name,
		Labels:    []string{"open", "fist"},
		Shortcuts: []string{"", "KEY_Space"},
	}
	if err := s.Keymaps().Create(k); err != nil {
		t.Fatalf("failed to create keymap: %v", err)
	}
	return k
}

func TestKeymapHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)
	createProfile(t, s, "default")

	req := httptest.NewRequest(http.MethodGet, "/api/keymaps", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listKeymapsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Keymaps) != 1 || response.Keymaps[0].Name != "default" {
		t.Errorf("unexpected keymaps: %+v", response.Keymaps)
	}
	if response.Keymaps[0].MouseActions == nil {
		t.Error("mouse_actions should encode as an empty list")
	}
}

func TestKeymapHandler_CreateJSON(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)

	body := `{"name":"office","labels":["open","fist"],"shortcuts":["","KEY_Space"],"mouse_actions":["0"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/keymaps", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created keymapResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}

	stored, err := s.Keymaps().GetByName("office")
	if err != nil {
		t.Fatalf("keymap not stored: %v", err)
	}
	if stored.ID != created.ID {
		t.Errorf("stored ID = %s, want %s", stored.ID, created.ID)
	}
}

func TestKeymapHandler_CreateINI(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/api/keymaps?name=imported", strings.NewReader(iniBody))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := s.Keymaps().GetByName("imported")
	if err != nil {
		t.Fatalf("keymap not stored: %v", err)
	}
	if len(stored.Labels) != 3 || stored.Labels[2] != "copy" {
		t.Errorf("labels = %q", stored.Labels)
	}
	if len(stored.MouseActions) != 2 {
		t.Errorf("mouse actions = %q", stored.MouseActions)
	}
}

func TestKeymapHandler_CreateInvalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)
	createProfile(t, s, "taken")

	tests := []struct {
		name        string
		contentType string
		url         string
		body        string
		want        int
	}{
		{"invalid JSON", "application/json", "/api/keymaps", "{", http.StatusBadRequest},
		{"missing name", "application/json", "/api/keymaps", `{"labels":["a"],"shortcuts":[""]}`, http.StatusBadRequest},
		{"no labels", "application/json", "/api/keymaps", `{"name":"x","labels":[],"shortcuts":[]}`, http.StatusBadRequest},
		{"length mismatch", "application/json", "/api/keymaps", `{"name":"x","labels":["a","b"],"shortcuts":[""]}`, http.StatusBadRequest},
		{"ini without name", "text/plain", "/api/keymaps", iniBody, http.StatusBadRequest},
		{"duplicate name", "application/json", "/api/keymaps", `{"name":"taken","labels":["a"],"shortcuts":[""]}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestKeymapHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)
	k := createProfile(t, s, "default")

	t.Run("by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/keymaps/"+k.ID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got keymapResponse
		json.NewDecoder(rec.Body).Decode(&got)
		if got.Name != "default" {
			t.Errorf("name = %s, want default", got.Name)
		}
	})

	t.Run("as keymap file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/keymaps/default?format=ini", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		km, err := keymap.Parse(rec.Body.Bytes())
		if err != nil {
			t.Fatalf("response is not a keymap file: %v", err)
		}
		if len(km.Labels) != 2 {
			t.Errorf("labels = %q", km.Labels)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/keymaps/missing", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestKeymapHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)
	k := createProfile(t, s, "before")

	body := `{"labels":["open","fist"],"shortcuts":["KEY_A","KEY_B"]}`
	req := httptest.NewRequest(http.MethodPut, "/api/keymaps/"+k.ID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, err := s.Keymaps().GetByID(k.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Name != "before" {
		t.Errorf("name = %s, want unchanged", stored.Name)
	}
	if stored.Shortcuts[0] != "KEY_A" {
		t.Errorf("shortcuts = %q", stored.Shortcuts)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/keymaps/missing", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestKeymapHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewKeymapHandler(s)
	k := createProfile(t, s, "gone")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/keymaps/"+k.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/keymaps/"+k.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestKeymapHandler_MethodNotAllowed(t *testing.T) {
	handler := NewKeymapHandler(newTestStore(t))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPatch, "/api/keymaps"},
		{http.MethodPost, "/api/keymaps/some-id"},
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
