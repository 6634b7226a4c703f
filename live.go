package fastlap

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// LiveMessage is the envelope pushed to websocket subscribers.
type LiveMessage struct {
	MessageType string      `json:"type"`
	Body        interface{} `json:"body,omitempty"`
}

const messageTypeLeaderboard = "leaderboard"

type liveClient struct {
	conn *websocket.Conn

	writeMutex sync.Mutex
}

func (c *liveClient) writeJSON(message LiveMessage) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	return c.conn.WriteJSON(message)
}

// LiveHub pushes the freshly ranked leaderboard of an event to all websocket
// subscribers of that event whenever its entries change.
type LiveHub struct {
	entryManager *LapEntryManager
	upgrader     websocket.Upgrader

	mutex   sync.Mutex
	clients map[string]map[*liveClient]bool
}

func NewLiveHub(entryManager *LapEntryManager) *LiveHub {
	hub := &LiveHub{
		entryManager: entryManager,
		upgrader: websocket.Upgrader{
			// the public site may be served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[*liveClient]bool),
	}

	entryManager.OnChange(hub.BroadcastLeaderboard)

	return hub
}

// Subscribe upgrades the request and registers the connection for an event's
// updates, sending the current leaderboard immediately.
func (h *LiveHub) Subscribe(eventID string, w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)

	if err != nil {
		return err
	}

	client := &liveClient{conn: conn}

	h.mutex.Lock()

	if h.clients[eventID] == nil {
		h.clients[eventID] = make(map[*liveClient]bool)
	}

	h.clients[eventID][client] = true
	h.mutex.Unlock()

	if entries, err := h.entryManager.List(eventID); err == nil {
		_ = client.writeJSON(LiveMessage{MessageType: messageTypeLeaderboard, Body: entries})
	}

	go h.readLoop(eventID, client)

	return nil
}

// readLoop discards inbound frames; it exists to notice disconnects.
func (h *LiveHub) readLoop(eventID string, client *liveClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mutex.Lock()

	delete(h.clients[eventID], client)

	h.mutex.Unlock()

	_ = client.conn.Close()
}

// BroadcastLeaderboard reranks the event and pushes the result to every
// subscriber. Slow or dead connections are dropped.
func (h *LiveHub) BroadcastLeaderboard(eventID string) {
	h.mutex.Lock()
	subscribers := make([]*liveClient, 0, len(h.clients[eventID]))

	for client := range h.clients[eventID] {
		subscribers = append(subscribers, client)
	}
	h.mutex.Unlock()

	if len(subscribers) == 0 {
		return
	}

	entries, err := h.entryManager.List(eventID)

	if err != nil {
		logrus.WithError(err).Errorf("Could not rank event %s for live broadcast", eventID)
		return
	}

	message := LiveMessage{MessageType: messageTypeLeaderboard, Body: entries}

	for _, client := range subscribers {
		if err := client.writeJSON(message); err != nil {
			h.mutex.Lock()
			delete(h.clients[eventID], client)
			h.mutex.Unlock()

			_ = client.conn.Close()
		}
	}
}
