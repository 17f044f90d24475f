package websockets

import (
	"sync"
	"time"
)

type Hub struct {
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
}

func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			func() {
				defer func() {
					if r := recover(); r != nil {
						_ = r // Explicitly ignore recovered value
					}
				}()
				close(client.send)
			}()
			m.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message, m)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	log := m.log.Function("registerClient")

	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client

	log.Info("Client registered", "clientID", client.ID, "totalClients", len(m.hub.clients))
}

func (m *Manager) unregisterClient(client *Client) {
	log := m.log.Function("unregisterClient")

	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	delete(m.hub.clients, client.ID)

	log.Info("Client unregistered", "clientID", client.ID, "totalClients", len(m.hub.clients))
}

func (h *Hub) broadcastMessage(message Message, m *Manager) {
	log := m.log.Function("broadcastMessage")

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	sentCount := 0
	for clientID, client := range h.clients {
		select {
		case client.send <- message:
			sentCount++
		default:
			go func(c *Client, cID string, msg Message) {
				select {
				case c.send <- msg:
					log.Info("Message sent after retry", "clientID", cID)
				case <-time.After(5 * time.Second):
					_ = log.Error("Client too slow, disconnecting", "clientID", cID)
					m.hub.unregister <- c
				}
			}(client, clientID, message)
		}
	}

	log.Info(
		"Broadcast complete",
		"messageID", message.ID,
		"sentTo", sentCount,
		"totalClients", len(h.clients),
	)
}
