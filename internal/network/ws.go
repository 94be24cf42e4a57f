package network

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/amalg/go-mazewalk/internal/game"
)

const (
	viewerQueue    = 16
	viewerPongWait = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Spectator feed is read-only; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// viewer is one WebSocket spectator with its own send queue.
type viewer struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub fans frame snapshots out to WebSocket spectators.
type Hub struct {
	viewers map[*viewer]struct{}
	closed  bool
	mu      sync.Mutex
	log     *zap.SugaredLogger
}

// NewHub creates an empty spectator hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		viewers: make(map[*viewer]struct{}),
		log:     log,
	}
}

// Len returns the number of attached spectators.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Broadcast queues a snapshot as a JSON text frame for every spectator.
// A spectator whose queue is full misses this frame.
func (h *Hub) Broadcast(snap game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.viewers) == 0 {
		return
	}

	b, err := json.Marshal(StateMsg{Snapshot: snap})
	if err != nil {
		h.log.Errorw("marshal snapshot", "error", err)
		return
	}
	for v := range h.viewers {
		select {
		case v.send <- b:
		default:
		}
	}
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for v := range h.viewers {
		close(v.send)
		delete(h.viewers, v)
	}
}

// ServeHTTP upgrades the request and streams snapshots until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	v := &viewer{ws: ws, send: make(chan []byte, viewerQueue)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		ws.Close()
		return
	}
	h.viewers[v] = struct{}{}
	h.mu.Unlock()

	h.log.Infow("spectator attached", "remote", r.RemoteAddr)

	go h.writePump(v)
	h.readPump(v)
}

// writePump drains the viewer's queue onto the socket and keeps it alive
// with pings. It is the only writer on v.ws.
func (h *Hub) writePump(v *viewer) {
	ping := time.NewTicker(viewerPongWait / 2)
	defer func() {
		ping.Stop()
		v.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			v.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				v.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			v.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detaches the viewer when it goes away.
func (h *Hub) readPump(v *viewer) {
	defer h.detach(v)

	v.ws.SetReadLimit(1 << 10)
	v.ws.SetReadDeadline(time.Now().Add(viewerPongWait))
	v.ws.SetPongHandler(func(string) error {
		v.ws.SetReadDeadline(time.Now().Add(viewerPongWait))
		return nil
	})
	for {
		if _, _, err := v.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) detach(v *viewer) {
	h.mu.Lock()
	if _, ok := h.viewers[v]; ok {
		close(v.send)
		delete(h.viewers, v)
	}
	h.mu.Unlock()
	h.log.Infow("spectator detached")
}
