package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/keymap"
	"github.com/ayusman/mudra/internal/store"
)

// KeymapHandler handles HTTP requests for keymap profiles.
//
// Bodies are either JSON lists or the text of a keymap file. A keymap file
// carries no name, so it is taken from the name query parameter.
type KeymapHandler struct {
	store *store.Store
}

// NewKeymapHandler creates a new KeymapHandler with the given store.
func NewKeymapHandler(s *store.Store) *KeymapHandler {
	return &KeymapHandler{store: s}
}

// ServeHTTP routes /api/keymaps and /api/keymaps/{id}.
func (h *KeymapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/keymaps")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type keymapRequest struct {
	Name         string   `json:"name"`
	Labels       []string `json:"labels"`
	Shortcuts    []string `json:"shortcuts"`
	MouseActions []string `json:"mouse_actions"`
}

type keymapResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Labels       []string `json:"labels"`
	Shortcuts    []string `json:"shortcuts"`
	MouseActions []string `json:"mouse_actions"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type listKeymapsResponse struct {
	Keymaps []keymapResponse `json:"keymaps"`
}

func toKeymapResponse(k *store.Keymap) keymapResponse {
	mouse := k.MouseActions
	if mouse == nil {
		mouse = []string{}
	}
	return keymapResponse{
		ID:           k.ID,
		Name:         k.Name,
		Labels:       k.Labels,
		Shortcuts:    k.Shortcuts,
		MouseActions: mouse,
		CreatedAt:    k.CreatedAt.Format(timeFormat),
		UpdatedAt:    k.UpdatedAt.Format(timeFormat),
	}
}

// decodeKeymap reads a JSON or keymap file body and validates the lists.
func decodeKeymap(w http.ResponseWriter, r *http.Request) (keymapRequest, error) {
	var req keymapRequest
	body := http.MaxBytesReader(w, r.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return req, errors.New("Invalid JSON")
		}
	} else {
		data, err := io.ReadAll(body)
		if err != nil {
			return req, errors.New("Failed to read body")
		}
		km, err := keymap.Parse(data)
		if err != nil {
			return req, err
		}
		req = keymapRequest{
			Name:         r.URL.Query().Get("name"),
			Labels:       km.Labels,
			Shortcuts:    km.Shortcuts,
			MouseActions: km.MouseActions,
		}
	}

	if _, err := keymap.New(req.Labels, req.Shortcuts, req.MouseActions); err != nil {
		return req, err
	}
	return req, nil
}

// list handles GET /api/keymaps.
func (h *KeymapHandler) list(w http.ResponseWriter, r *http.Request) {
	keymaps, err := h.store.Keymaps().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list keymaps")
		return
	}

	response := listKeymapsResponse{
		Keymaps: make([]keymapResponse, 0, len(keymaps)),
	}
	for _, k := range keymaps {
		response.Keymaps = append(response.Keymaps, toKeymapResponse(k))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/keymaps/{id}. With format=ini the profile is
// returned as a keymap file.
func (h *KeymapHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	k, err := h.store.Keymaps().Resolve(id)
	if err != nil {
		h.storeError(w, err, "Failed to get keymap")
		return
	}

	if r.URL.Query().Get("format") == "ini" {
		km, err := k.Keymap()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		km.Encode(w)
		return
	}

	writeJSON(w, http.StatusOK, toKeymapResponse(k))
}

// create handles POST /api/keymaps.
func (h *KeymapHandler) create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeKeymap(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	k := &store.Keymap{
		Name:         req.Name,
		Labels:       req.Labels,
		Shortcuts:    req.Shortcuts,
		MouseActions: req.MouseActions,
	}
	if err := h.store.Keymaps().Create(k); err != nil {
		h.storeError(w, err, "Failed to create keymap")
		return
	}

	writeJSON(w, http.StatusCreated, toKeymapResponse(k))
}

// update handles PUT /api/keymaps/{id}. The lists are replaced; an empty
// name keeps the current one.
func (h *KeymapHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	k, err := h.store.Keymaps().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get keymap")
		return
	}

	req, err := decodeKeymap(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		k.Name = req.Name
	}
	k.Labels = req.Labels
	k.Shortcuts = req.Shortcuts
	k.MouseActions = req.MouseActions

	if err := h.store.Keymaps().Update(k); err != nil {
		h.storeError(w, err, "Failed to update keymap")
		return
	}

	writeJSON(w, http.StatusOK, toKeymapResponse(k))
}

// delete handles DELETE /api/keymaps/{id}.
func (h *KeymapHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Keymaps().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete keymap")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KeymapHandler) storeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Keymap not found")
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "Keymap name already exists")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
