package hub

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"repairdesk-service/internal/model"
)

func TestPublishRevisionMonotonic(t *testing.T) {
	h := New(zerolog.Nop())

	if h.Revision() != 0 {
		t.Fatalf("fresh hub revision = %d", h.Revision())
	}

	ticket := &model.Ticket{TicketID: "260305123"}
	for i := 1; i <= 5; i++ {
		h.Publish(EventTicketUpdated, ticket)
		if got := h.Revision(); got != uint64(i) {
			t.Fatalf("revision after %d publishes = %d", i, got)
		}
	}
}

func TestPublishDeliversStampedEvent(t *testing.T) {
	h := New(zerolog.Nop())
	c := &client{id: "test", send: make(chan []byte, 1)}
	h.register(c)

	h.Publish(EventOnlinePayment, &model.Ticket{TicketID: "260305123"})

	var event Event
	if err := json.Unmarshal(<-c.send, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Type != EventOnlinePayment || event.Revision != 1 || event.TicketID != "260305123" {
		t.Fatalf("event = %+v", event)
	}
}

func TestPublishSkipsSlowClient(t *testing.T) {
	h := New(zerolog.Nop())
	slow := &client{id: "slow", send: make(chan []byte)} // unbuffered, nobody reading
	h.register(slow)

	done := make(chan struct{})
	go func() {
		h.Publish(EventTicketDeleted, &model.Ticket{TicketID: "260305456"})
		close(done)
	}()

	<-done
	if h.Revision() != 1 {
		t.Fatalf("revision = %d", h.Revision())
	}
}
