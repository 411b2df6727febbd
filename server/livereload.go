package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const reloadPath = "/_aero/reload"

const reloadSnippet = `<script>(function(){var u=(location.protocol==="https:"?"wss://":"ws://")+location.host+"` + reloadPath + `";function c(){var s=new WebSocket(u);s.onmessage=function(){location.reload()};s.onclose=function(){setTimeout(c,1000)}}c()})()</script>`

// reloadHub tracks live-reload websocket connections and broadcasts a
// reload message when templates change.
type reloadHub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newReloadHub(log *slog.Logger) *reloadHub {
	return &reloadHub{
		log: log,
		upgrader: websocket.Upgrader{
			// Dev-only endpoint on the same host as the page.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: map[*websocket.Conn]struct{}{},
	}
}

func (h *reloadHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("reload upgrade failed", "error", err)
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		// Drain until the browser goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()
}

func (h *reloadHub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}
