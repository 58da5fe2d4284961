package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// Controller is the part of the running application the control endpoints
// drive.
type Controller interface {
	StartControllingProfile(modelFile, ref string) error
	StopControlling()
	IsControlling() bool
	Session() string
	SetBackground() error
	ClearBackground()
}

// ControlHandler starts and stops the controlling session and manages the
// background.
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a new ControlHandler driving ctrl.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

type startRequest struct {
	Model  string `json:"model"`
	Keymap string `json:"keymap"`
}

type statusResponse struct {
	Controlling bool   `json:"controlling"`
	Session     string `json:"session,omitempty"`
}

// ServeHTTP routes GET /api/control and POST /api/control/{command}.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	command := strings.TrimPrefix(r.URL.Path, "/api/control")
	command = strings.TrimPrefix(command, "/")

	if command == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.status(w)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch command {
	case "start":
		h.start(w, r)
	case "stop":
		h.ctrl.StopControlling()
		h.status(w)
	case "background":
		if err := h.ctrl.SetBackground(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "clear-background":
		h.ctrl.ClearBackground()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound, "Unknown command")
	}
}

func (h *ControlHandler) status(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, statusResponse{
		Controlling: h.ctrl.IsControlling(),
		Session:     h.ctrl.Session(),
	})
}

// start handles POST /api/control/start. Both fields are optional and fall
// back to the last used keymap and model.
func (h *ControlHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.ctrl.StartControllingProfile(req.Model, req.Keymap); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.status(w)
}
