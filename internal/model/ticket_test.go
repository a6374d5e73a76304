package model

import (
	"testing"
	"time"
)

func TestParseTicketStatus(t *testing.T) {
	valid := []string{
		"NOT_STARTED", "IN_PROGRESS", "COMPLETED", "UNREPAIRABLE",
		"PAYMENT_COLLECTED", "HANDED_OVER", "RETURNED", "PICKED_UP",
	}
	for _, raw := range valid {
		status, err := ParseTicketStatus(raw)
		if err != nil {
			t.Fatalf("ParseTicketStatus(%q): %v", raw, err)
		}
		if string(status) != raw {
			t.Fatalf("ParseTicketStatus(%q) = %q", raw, status)
		}
	}

	for _, raw := range []string{"", "completed", "REPAIRING", "DONE"} {
		if _, err := ParseTicketStatus(raw); err == nil {
			t.Fatalf("ParseTicketStatus(%q) accepted", raw)
		}
	}
}

func TestHasTerminalMarker(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{"fresh ticket", Ticket{Status: TicketStatusNotStarted}, false},
		{"handed over with timestamp", Ticket{Status: TicketStatusHandedOver, HandoverAt: &now}, true},
		{"payment collected with timestamp", Ticket{Status: TicketStatusPaymentCollected, PaymentCollectedAt: &now}, true},
		{"picked up", Ticket{Status: TicketStatusPickedUp, CustomerPickupAt: &now}, true},
		{"handover completed flag", Ticket{Status: TicketStatusHandedOver, HandoverCompleted: true}, true},
		{"returned but not picked up", Ticket{Status: TicketStatusReturned, ReturnAt: &now}, false},
		{"completed awaiting payment", Ticket{Status: TicketStatusCompleted}, false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.HasTerminalMarker(); got != tt.want {
				t.Fatalf("HasTerminalMarker = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriorityIsUrgent(t *testing.T) {
	if !PriorityUrgent.IsUrgent() || !PriorityHigh.IsUrgent() {
		t.Fatal("Urgent and High must count as urgent")
	}
	if PriorityNormal.IsUrgent() || PriorityLow.IsUrgent() {
		t.Fatal("Normal and Low must not count as urgent")
	}
}

func TestDeviceInfo(t *testing.T) {
	ticket := Ticket{DeviceBrand: "Samsung", DeviceModel: "Galaxy S21"}
	if got := ticket.DeviceInfo(); got != "Samsung Galaxy S21" {
		t.Fatalf("DeviceInfo = %q", got)
	}
}
