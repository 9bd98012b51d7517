package mesh

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/agora/internal/protocol"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Client is the replica-side transport: it dials the authority, requests a
// snapshot on every (re)connect, and feeds inbound messages to the peer. A
// replica that never reaches the authority simply stays in
// awaiting-snapshot and prices off host defaults.
type Client struct {
	peer *Peer
	url  string
	done chan struct{}
}

// NewClient creates a client for a replica peer.
func NewClient(peer *Peer, url string) *Client {
	return &Client{
		peer: peer,
		url:  url,
		done: make(chan struct{}),
	}
}

// Run connects and reads until Close is called, reconnecting with
// exponential backoff. Blocks; run it in a goroutine.
func (c *Client) Run() {
	backoff := reconnectMin
	for {
		select {
		case <-c.done:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			slog.Warn("authority dial failed", "url", c.url, "retry_in", backoff)
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, reconnectMax)
			continue
		}
		backoff = reconnectMin
		slog.Info("connected to authority", "url", c.url)

		c.requestSnapshot(conn)
		c.readLoop(conn)
		conn.Close()
	}
}

// Close stops the client after the current read.
func (c *Client) Close() {
	close(c.done)
}

func (c *Client) requestSnapshot(conn *websocket.Conn) {
	data, err := protocol.Marshal(protocol.NewRequestSnapshot(c.peer.ID))
	if err != nil {
		slog.Error("snapshot request encode failed", "error", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Warn("snapshot request send failed", "error", err)
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("authority connection lost", "error", err)
			return
		}
		c.peer.HandleMessage(data)
	}
}
