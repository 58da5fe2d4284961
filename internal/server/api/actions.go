package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// Action log query limits.
const (
	defaultActionLimit = 50
	maxActionLimit     = 1000
)

// ActionLogHandler serves the log of committed actions.
type ActionLogHandler struct {
	store *store.Store
}

// NewActionLogHandler creates a new ActionLogHandler with the given store.
func NewActionLogHandler(s *store.Store) *ActionLogHandler {
	return &ActionLogHandler{store: s}
}

type actionEntryResponse struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionEntryResponse `json:"actions"`
}

// ServeHTTP handles GET /api/actions. The optional session parameter
// filters by session and limit bounds the number of entries returned,
// newest first.
func (h *ActionLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultActionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxActionLimit)
	}

	var (
		entries []*store.ActionEntry
		err     error
	)
	if session := r.URL.Query().Get("session"); session != "" {
		entries, err = h.store.ActionLog().BySession(session, limit)
	} else {
		entries, err = h.store.ActionLog().Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}

	response := listActionsResponse{
		Actions: make([]actionEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		response.Actions = append(response.Actions, actionEntryResponse{
			ID:        e.ID,
			SessionID: e.SessionID,
			Kind:      e.Kind,
			Label:     e.Label,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt.Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
