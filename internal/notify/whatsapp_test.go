package notify

import (
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"repairdesk-service/internal/config"
	"repairdesk-service/internal/model"
)

var testShop = config.ShopConfig{
	Name:        "Quick Fix Mobiles",
	Address:     "12 MG Road, Pune",
	Phone:       "020-12345678",
	Hours:       "10 AM - 8 PM",
	CountryCode: "91",
}

func testNotifier() *WhatsAppNotifier {
	// nil log repo: RenderMessage and InternationalPhone never touch storage.
	return NewWhatsAppNotifier(testShop, nil, zerolog.Nop())
}

func TestInternationalPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "919876543210"},
		{"98765 43210", "919876543210"},
		{"919876543210", "919876543210"},
		{"+91 98765 43210", "919876543210"},
	}

	for _, tt := range cases {
		if got := InternationalPhone(tt.in, "91"); got != tt.want {
			t.Fatalf("InternationalPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderMessage(t *testing.T) {
	n := testNotifier()
	ticket := &model.Ticket{
		TicketID:     "260305123",
		CustomerName: "Ravi",
		DeviceBrand:  "Samsung",
		DeviceModel:  "Galaxy S21",
		FinalAmount:  1500,
	}

	cases := []struct {
		msgType  model.MessageType
		lang     model.MessageLanguage
		contains []string
	}{
		{model.MessageTypeHandover, model.LanguageEnglish, []string{"Ravi", "Samsung Galaxy S21", "260305123", "already received online"}},
		{model.MessageTypePayment, model.LanguageEnglish, []string{"1500", "pay at the counter"}},
		{model.MessageTypeReturn, model.LanguageEnglish, []string{"cannot be repaired", "No charges"}},
		{model.MessageTypeHandover, model.LanguageHindi, []string{"260305123", "Samsung Galaxy S21"}},
	}

	for _, tt := range cases {
		msg, err := n.RenderMessage(ticket, tt.msgType, tt.lang)
		if err != nil {
			t.Fatalf("%s/%s: %v", tt.msgType, tt.lang, err)
		}
		for _, want := range tt.contains {
			if !strings.Contains(msg, want) {
				t.Fatalf("%s/%s message missing %q:\n%s", tt.msgType, tt.lang, want, msg)
			}
		}
		if !strings.Contains(msg, testShop.Address) {
			t.Fatalf("%s/%s message missing shop footer", tt.msgType, tt.lang)
		}
	}
}

func TestRenderMessageRejectsUnknown(t *testing.T) {
	n := testNotifier()
	ticket := &model.Ticket{TicketID: "260305123"}

	if _, err := n.RenderMessage(ticket, "reminder", model.LanguageEnglish); err == nil {
		t.Fatal("expected error for unknown message type")
	}
	if _, err := n.RenderMessage(ticket, model.MessageTypeHandover, "tamil"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestWaLinkEncodesMessage(t *testing.T) {
	// The link must round-trip the rendered message through URL encoding.
	message := "Hello Ravi! 👋\n\nYour *Samsung Galaxy S21* is ready."
	link := "https://wa.me/919876543210?text=" + url.QueryEscape(message)

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if parsed.Host != "wa.me" {
		t.Fatalf("host = %q", parsed.Host)
	}
	if got := parsed.Query().Get("text"); got != message {
		t.Fatalf("decoded text = %q, want %q", got, message)
	}
}
