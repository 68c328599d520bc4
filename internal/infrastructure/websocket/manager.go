package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// EventXPUpdated is pushed after every balance change.
const EventXPUpdated = "xp.updated"

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one WebSocket connection. A profile may hold several.
type Client struct {
	ProfileID string
	Conn      *websocket.Conn
	Send      chan []byte
}

func NewClient(profileID string, conn *websocket.Conn) *Client {
	return &Client{
		ProfileID: profileID,
		Conn:      conn,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Manager tracks live connections and fans balance updates out to them.
type Manager struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     logger.Logger
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Start runs the registration loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				set, ok := m.clients[client.ProfileID]
				if !ok {
					set = make(map[*Client]struct{})
					m.clients[client.ProfileID] = set
				}
				set[client] = struct{}{}
				m.mutex.Unlock()
				m.logger.Debug("websocket client registered", "profileId", client.ProfileID)

			case client := <-m.Unregister:
				m.remove(client)
				m.logger.Debug("websocket client unregistered", "profileId", client.ProfileID)

			case <-ctx.Done():
				close(m.done)
				m.closeAll()
				return
			}
		}
	}()
}

// Add registers client. It reports false once the manager has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	set, ok := m.clients[client.ProfileID]
	if !ok {
		return
	}
	if _, ok := set[client]; ok {
		delete(set, client)
		close(client.Send)
	}
	if len(set) == 0 {
		delete(m.clients, client.ProfileID)
	}
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for id, set := range m.clients {
		for c := range set {
			close(c.Send)
		}
		delete(m.clients, id)
	}
}

// ConnectionCount returns the number of open connections for a profile.
func (m *Manager) ConnectionCount(profileID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[profileID])
}

// SendToProfile queues message on every connection of the profile. Slow
// connections drop the message rather than block the caller.
func (m *Manager) SendToProfile(profileID string, message []byte) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sent := 0
	for c := range m.clients[profileID] {
		select {
		case c.Send <- message:
			sent++
		default:
			m.logger.Warn("websocket send buffer full, dropping event", "profileId", profileID)
		}
	}
	return sent
}

// NotifyXPChanged pushes the new balance to the profile's open connections.
func (m *Manager) NotifyXPChanged(profileID string, state *entity.XPState) {
	if state == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: EventXPUpdated, Data: state})
	if err != nil {
		m.logger.Error("failed to encode xp event", "profileId", profileID, "error", err)
		return
	}
	m.SendToProfile(profileID, payload)
}

// ReadPump drains the connection so control frames are processed. Clients
// send nothing the server acts on.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-m.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("websocket read failed", "profileId", c.ProfileID, "error", err)
			}
			return
		}
	}
}

// WritePump sends queued events and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
