// Package api provides the HTTP API handlers of the local control server.
package api

import (
	"encoding/json"
	"net/http"
)

// timeFormat is used for every timestamp in responses.
const timeFormat = "2006-01-02T15:04:05Z07:00"

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
