package net

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

const writeWait = 5 * time.Second

// Message is the envelope sent to followers. Type is "scene" for a full
// document.
type Message struct {
	Type     string          `json:"type"`
	Document *state.Document `json:"document,omitempty"`
}

// peer is one connected follower. mu serialises writes on its connection.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans every scene change out to the connected followers. New followers
// receive the latest document as soon as they connect.
type Hub struct {
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	peers  map[*peer]bool
	latest []byte

	pendingMu sync.Mutex
	pending   *state.Document
	wake      chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Followers are other SceneBoard processes on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]bool),
		wake:  make(chan struct{}, 1),
	}
}

// Publish queues doc for Run without blocking the caller. Documents
// published faster than they can be sent are coalesced; only the newest
// goes out.
func (h *Hub) Publish(doc state.Document) {
	h.pendingMu.Lock()
	h.pending = &doc
	h.pendingMu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Run broadcasts published documents until ctx ends.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.wake:
		}
		h.pendingMu.Lock()
		doc := h.pending
		h.pending = nil
		h.pendingMu.Unlock()
		if doc == nil {
			continue
		}
		if err := h.Broadcast(*doc); err != nil {
			log.WithError(err).WithField("component", "hub").Error("broadcast failed")
		}
	}
}

// Len returns the number of connected followers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends doc to every follower and remembers it for late joiners.
func (h *Hub) Broadcast(doc state.Document) error {
	data, err := json.Marshal(Message{Type: "scene", Document: &doc})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.latest = data
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		if err := p.send(data); err != nil {
			log.WithError(err).WithFields(log.Fields{"component": "hub", "peer": p.conn.RemoteAddr().String()}).Warn("send failed")
			h.remove(p)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and keeps the follower until it hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("component", "hub").Warn("upgrade failed")
		return
	}
	p := &peer{conn: conn}
	h.mu.Lock()
	h.peers[p] = true
	latest := h.latest
	h.mu.Unlock()
	addr := conn.RemoteAddr().String()
	log.WithFields(log.Fields{"component": "hub", "peer": addr}).Info("follower connected")

	if latest != nil {
		if err := p.send(latest); err != nil {
			h.remove(p)
			return
		}
	}
	// Followers are read-only; reading only notices the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.WithFields(log.Fields{"component": "hub", "peer": addr}).Debugf("follower gone: %v", err)
			h.remove(p)
			return
		}
	}
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		p.conn.Close()
		log.WithFields(log.Fields{"component": "hub", "peer": p.conn.RemoteAddr().String()}).Info("follower removed")
	}
}

// Close disconnects every follower.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*peer]bool)
	h.mu.Unlock()
	for p := range peers {
		p.mu.Lock()
		p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		p.mu.Unlock()
		p.conn.Close()
	}
}
