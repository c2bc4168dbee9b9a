package ws

import (
	"encoding/json"
	"fmt"

	"wtfSocial/domain"
	"wtfSocial/logger"
)

// Hub keeps track of the live websocket connections per user and fans
// incoming direct messages out to the receiver's connections. A user may
// hold several connections at once (multiple tabs/devices); a message is
// delivered to all of them. Users without a live connection simply miss
// the push and pick the message up over the REST conversation endpoints.
type Hub struct {
	clients    map[int]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	direct     chan *domain.Message
	log        *logger.Logger
}

// NewHub returns a Hub ready to Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *domain.Message, 64),
		log:        logger.New(),
	}
}

// Run owns the hub's state. It must run in its own goroutine; all state
// mutations funnel through the channels so no lock is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.log.Debug("ws", fmt.Sprintf("client %s connected for user %d", client.id, client.userID))
		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
		case message := <-h.direct:
			h.deliver(message)
		}
	}
}

// Deliver queues a message for push delivery to the receiver's live
// connections. It never blocks the caller.
func (h *Hub) Deliver(message *domain.Message) {
	select {
	case h.direct <- message:
	default:
		h.log.Error("ws", "direct message channel full, dropping push", nil)
	}
}

func (h *Hub) deliver(message *domain.Message) {
	conns, ok := h.clients[message.ReceiverID]
	if !ok {
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		h.log.Error("ws", "marshalling message for push", err)
		return
	}
	for client := range conns {
		select {
		case client.send <- payload:
		default:
			// Slow consumer, drop the connection rather than the hub.
			delete(conns, client)
			close(client.send)
		}
	}
}
