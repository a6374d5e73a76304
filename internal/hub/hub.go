package hub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"repairdesk-service/internal/model"
)

const (
	EventTicketCreated = "ticket_created"
	EventTicketUpdated = "ticket_updated"
	EventTicketDeleted = "ticket_deleted"
	EventOnlinePayment = "online_payment"
)

// Event is a ticket-change notification pushed to connected panels. Revision
// increases monotonically so a client can discard snapshots older than the
// last one it applied, even when deliveries race.
type Event struct {
	Type     string        `json:"type"`
	Revision uint64        `json:"revision"`
	Ticket   *model.Ticket `json:"ticket,omitempty"`
	TicketID string        `json:"ticket_id,omitempty"`
}

type client struct {
	id   string
	send chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	revision uint64
	log      zerolog.Logger
}

func New(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The panel is same-operator tooling behind the staff token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the connection and pumps broadcast events to the client
// until it disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, clientID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{id: clientID, send: make(chan []byte, 16)}
	h.register(c)

	go func() {
		defer func() {
			h.unregister(c)
			conn.Close()
		}()
		for payload := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.unregister(c)
				return
			}
		}
	}()

	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// Publish stamps the event with the next revision and fans it out. Slow
// clients are skipped rather than blocking the caller.
func (h *Hub) Publish(eventType string, ticket *model.Ticket) {
	h.mu.Lock()
	h.revision++
	event := Event{Type: eventType, Revision: h.revision, Ticket: ticket}
	if ticket != nil {
		event.TicketID = ticket.TicketID
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.mu.Unlock()
		h.log.Error().Err(err).Msg("marshal hub event")
		return
	}
	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Str("client", c.id).Msg("drop event for slow client")
		}
	}
	h.mu.Unlock()
}

// Revision returns the latest published revision.
func (h *Hub) Revision() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revision
}
