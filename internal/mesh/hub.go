package mesh

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/agora/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Hub is the authority-side transport: it accepts replica websocket
// connections, answers their snapshot requests, and fans out broadcasts.
type Hub struct {
	peer *Peer

	mu   sync.Mutex
	subs map[string]*subscriber

	upgrader websocket.Upgrader
}

// subscriber is one connected replica. The mutex serializes concurrent
// writes from the broadcast path and the request-reply path.
type subscriber struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// NewHub creates the hub and wires it as the peer's broadcaster.
func NewHub(peer *Peer) *Hub {
	h := &Hub{
		peer: peer,
		subs: make(map[string]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	peer.AttachBroadcaster(h)
	return h
}

// HandleWS upgrades an HTTP request to a replica connection and services
// it until the connection drops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()
	slog.Info("replica connected", "sub", sub.id, "replicas", count)

	go h.pingLoop(sub)
	h.readLoop(sub)
}

func (h *Hub) readLoop(sub *subscriber) {
	defer h.drop(sub)

	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil || env.ProtocolVersion != protocol.Version {
			slog.Debug("bad inbound message from replica", "sub", sub.id)
			continue
		}
		if env.Type == protocol.TypeRequestSnapshot {
			snap, err := h.peer.SnapshotMessage()
			if err != nil {
				slog.Error("cannot answer snapshot request", "error", err)
				continue
			}
			if err := sub.write(snap); err != nil {
				return
			}
			slog.Debug("snapshot sent", "sub", sub.id)
		}
	}
}

func (h *Hub) pingLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.PingMessage, nil)
		sub.mu.Unlock()
		if err != nil {
			return
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	sub.conn.Close()
	h.mu.Lock()
	delete(h.subs, sub.id)
	count := len(h.subs)
	h.mu.Unlock()
	slog.Info("replica disconnected", "sub", sub.id, "replicas", count)
}

// Broadcast fans a message out to every connected replica, fire-and-forget.
// Write failures drop the subscriber; its client will reconnect and request
// a fresh snapshot.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.write(data); err != nil {
			slog.Debug("broadcast write failed, dropping replica", "sub", sub.id)
			h.drop(sub)
		}
	}
}

// Replicas returns the number of connected replicas.
func (h *Hub) Replicas() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
