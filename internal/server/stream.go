package server

import (
	"fmt"
	"net/http"
)

// StreamHandler serves the monitor image as MJPEG.
type StreamHandler struct {
	monitor Monitor
}

// NewStreamHandler creates a new StreamHandler reading from monitor.
func NewStreamHandler(monitor Monitor) *StreamHandler {
	return &StreamHandler{monitor: monitor}
}

// ServeHTTP streams one JPEG part per processed frame until the client
// disconnects or the monitor closes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshots, cancel := h.monitor.Subscribe(true)
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if len(snap.Frame) == 0 {
				continue
			}

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(snap.Frame))
			if _, err := w.Write(snap.Frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
