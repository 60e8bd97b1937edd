package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/signal"
)

// Message is what the server sends over the websocket
type Message struct {
	Type    string  `json:"type"`
	Payload Refresh `json:"payload"`
}

// Refresh tells the client to reload the view of its chart
type Refresh struct {
	Code   string `json:"code"`
	Period string `json:"period"`
	Seq    uint64 `json:"seq"`
}

// hub fans refresh signals out to the websocket clients of each chart
type hub struct {
	sync.RWMutex
	clients   map[*websocket.Conn]signal.Key
	watched   map[signal.Key]bool
	upgrader  websocket.Upgrader
	broadcast chan Message
	refresh   *signal.Feed
	log       logger.Logger
	done      chan struct{}
	closeOnce sync.Once
}

func newHub(log logger.Logger, refresh *signal.Feed) *hub {
	h := &hub{
		clients: make(map[*websocket.Conn]signal.Key),
		watched: make(map[signal.Key]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcast: make(chan Message, 100),
		refresh:   refresh,
		log:       log,
		done:      make(chan struct{}),
	}

	go h.handleBroadcasts()
	return h
}

// watch forwards the refreshes of key to its clients
func (h *hub) watch(key signal.Key) {
	h.Lock()
	defer h.Unlock()

	if h.watched[key] {
		return
	}
	h.watched[key] = true

	h.refresh.Subscribe(key, func(r signal.Refresh) {
		h.publish(Message{
			Type:    "refresh",
			Payload: Refresh{Code: r.Key.Code, Period: r.Key.Period, Seq: r.Seq},
		})
	})
}

func (h *hub) publish(msg Message) {
	select {
	case <-h.done:
	case h.broadcast <- msg:
	}
}

// handleBroadcasts writes each message to the clients of its chart. It is
// the only writer of registered connections.
func (h *hub) handleBroadcasts() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.broadcast:
			key := signal.NewKey(msg.Payload.Code, msg.Payload.Period)

			h.RLock()
			for conn, clientKey := range h.clients {
				if clientKey != key {
					continue
				}

				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Error("Error sending WebSocket message: ", err)
					// the reader of this connection unregisters it
					conn.Close()
				}
			}
			h.RUnlock()
		}
	}
}

// handleWebSocket upgrades a client of ?code=&period= and sends it the
// current refresh counter
func (h *hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code, period := r.URL.Query().Get("code"), r.URL.Query().Get("period")
	if code == "" || period == "" {
		http.Error(w, "Missing code or period parameter", http.StatusBadRequest)
		return
	}
	key := signal.NewKey(code, period)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection to WebSocket: ", err)
		return
	}

	hello := Message{Type: "hello", Payload: Refresh{Code: key.Code, Period: key.Period, Seq: h.refresh.Seq(key)}}
	if err := conn.WriteJSON(hello); err != nil {
		h.log.Error("Error sending initial message: ", err)
		conn.Close()
		return
	}

	h.Lock()
	h.clients[conn] = key
	clientCount := len(h.clients)
	h.Unlock()

	h.log.WithField("chart", key.String()).Infof("WebSocket client connected, total: %d", clientCount)
	go h.handleClient(conn)
}

// handleClient reads until the client goes away
func (h *hub) handleClient(conn *websocket.Conn) {
	defer func() {
		h.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.Unlock()
		conn.Close()
		h.log.Debugf("WebSocket client disconnected, remaining: %d", remaining)
	}()

	conn.SetPingHandler(func(string) error {
		return conn.WriteControl(websocket.PongMessage, []byte{}, time.Now().Add(10*time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Error("WebSocket read error: ", err)
			}
			return
		}
	}
}

func (h *hub) close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.Unlock()
	})
}
