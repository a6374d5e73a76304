package receipt

import (
	"strings"
	"testing"
	"time"

	"repairdesk-service/internal/config"
	"repairdesk-service/internal/model"
)

func TestRender(t *testing.T) {
	renderer, err := NewRenderer(config.ShopConfig{
		Name:    "Quick Fix Mobiles",
		Address: "12 MG Road, Pune",
		Phone:   "020-12345678",
		Hours:   "10 AM - 8 PM",
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	ticket := &model.Ticket{
		TicketID:       "260305123",
		CustomerName:   "Ravi <script>alert(1)</script>",
		CustomerMobile: "9876543210",
		DeviceBrand:    "Samsung",
		DeviceModel:    "Galaxy S21",
		DeviceProblem:  "Broken screen",
		Priority:       model.PriorityNormal,
		Status:         model.TicketStatusNotStarted,
		EstimatedCost:  1500,
		CreatedAt:      time.Date(2026, 3, 5, 14, 30, 0, 0, time.Local),
	}

	html, err := renderer.Render(ticket)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		"Quick Fix Mobiles",
		`data-ticket-id="260305123"`,
		"9876543210",
		"Samsung Galaxy S21",
		"₹1500.00",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("receipt missing %q:\n%s", want, html)
		}
	}

	// Customer-entered text is escaped, not interpolated.
	if strings.Contains(html, "<script>") {
		t.Fatal("receipt contains unescaped markup")
	}

	// No final amount recorded yet: the paid block is omitted.
	if strings.Contains(html, "Amount Paid") {
		t.Fatal("receipt shows payment block for unpaid ticket")
	}
}

func TestRenderPaidTicketShowsPayment(t *testing.T) {
	renderer, err := NewRenderer(config.ShopConfig{Name: "Quick Fix Mobiles"})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	html, err := renderer.Render(&model.Ticket{
		TicketID:      "260305456",
		FinalAmount:   1450.50,
		PaymentMethod: model.PaymentMethodUPI,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "Amount Paid") || !strings.Contains(html, "1450.50") {
		t.Fatalf("paid receipt missing payment block:\n%s", html)
	}
}
