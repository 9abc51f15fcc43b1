package server

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,

	// The relay carries no credentials and no media, so any origin may
	// connect. Lock this down if the deployment ever fronts something
	// more sensitive than call setup.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWs returns the handler for the /ws route. Each upgraded connection
// gets a fresh transport-assigned ID, is registered with the hub, and runs
// its own read and write pump goroutines for the life of the channel.
func ServeWs(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := &signaling.Client{
			ID:   uuid.NewString(),
			Hub:  hub,
			Conn: conn,
			Send: make(chan *signaling.Message, 256),
		}

		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// HealthCheck answers liveness probes.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// Routes builds the server's entire HTTP surface: the websocket endpoint, a
// health probe, and the static client bundle with index.html at /.
func Routes(hub *signaling.Hub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthCheck)
	mux.HandleFunc("/ws", ServeWs(hub))

	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("/", fs)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})

	return mux
}
