package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/c9s/pythia/pkg/slideshow"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// hub fans the player state out to the connected websocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan slideshow.State
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]chan slideshow.State),
	}
}

func (h *hub) add(conn *websocket.Conn) chan slideshow.State {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan slideshow.State, 8)
	h.clients[conn] = ch
	return ch
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

func (h *hub) broadcast(state slideshow.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		select {
		case ch <- state:
		default:
			log.Warnf("websocket client %s is too slow, state dropped", conn.RemoteAddr())
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		_ = conn.Close()
		close(ch)
		delete(h.clients, conn)
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleWebSocket streams the player state. Clients may send "next", "previous", "toggle",
// "play" or "pause" as text messages.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade error")
		return
	}

	ch := s.hub.add(conn)

	go func() {
		defer conn.Close()

		// the current state first
		if err := writeState(conn, s.Player.State()); err != nil {
			return
		}

		for state := range ch {
			if err := writeState(conn, state); err != nil {
				return
			}
		}
	}()

	defer s.hub.remove(conn)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch string(message) {
		case "next":
			s.Player.Next()
		case "previous":
			s.Player.Previous()
		case "toggle":
			s.Player.Toggle()
		case "play":
			s.Player.Play()
		case "pause":
			s.Player.Pause()
		default:
			log.Warnf("unknown websocket command %q", message)
		}
	}
}

func writeState(conn *websocket.Conn, state slideshow.State) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(state)
}
