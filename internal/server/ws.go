package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ayusman/mudra/internal/logging"
)

// MonitorInterval is the minimum time between two monitor messages sent
// to one client.
const MonitorInterval = 66 * time.Millisecond

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// MonitorHandler pushes hand results and dispatched actions to websocket
// clients. Snapshots arriving faster than MonitorInterval are dropped unless
// they carry a committed action.
type MonitorHandler struct {
	monitor  Monitor
	interval time.Duration
	log      *logrus.Entry
}

// NewMonitorHandler creates a new MonitorHandler reading from monitor.
func NewMonitorHandler(monitor Monitor) *MonitorHandler {
	return &MonitorHandler{
		monitor:  monitor,
		interval: MonitorInterval,
		log:      logging.Component("monitor"),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *MonitorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snapshots, cancel := h.monitor.Subscribe(false)
	defer cancel()

	// The read loop only notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Every(h.interval), 1)
	for {
		select {
		case <-closed:
			return
		case snap, ok := <-snapshots:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeTimeout))
				return
			}
			// Committed actions always go out so clients see every click.
			if !snap.Committed && !limiter.Allow() {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				h.log.WithError(err).Debug("monitor client dropped")
				return
			}
		}
	}
}
