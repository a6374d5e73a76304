package notify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"repairdesk-service/internal/config"
	"repairdesk-service/internal/model"
	"repairdesk-service/internal/repository"
	"repairdesk-service/internal/utils"
)

// WhatsAppNotifier builds wa.me deep links with a pre-filled bilingual message.
// Nothing is sent programmatically: the operator opens the link in their own
// WhatsApp client, so the log records issuance, not delivery.
type WhatsAppNotifier struct {
	shop    config.ShopConfig
	logRepo *repository.NotificationLogRepository
	log     zerolog.Logger
	now     func() time.Time
}

func NewWhatsAppNotifier(shop config.ShopConfig, logRepo *repository.NotificationLogRepository, log zerolog.Logger) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		shop:    shop,
		logRepo: logRepo,
		log:     log,
		now:     time.Now,
	}
}

// Link is the prepared outbound message.
type Link struct {
	URL     string `json:"url"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
}

// BuildLink renders the message for the ticket and wraps it in a wa.me URL.
// The notification log entry is appended best-effort: a log failure does not
// block the operator from messaging the customer.
func (n *WhatsAppNotifier) BuildLink(ctx context.Context, ticket *model.Ticket, msgType model.MessageType, lang model.MessageLanguage) (*Link, error) {
	message, err := n.RenderMessage(ticket, msgType, lang)
	if err != nil {
		return nil, err
	}

	phone := InternationalPhone(ticket.CustomerMobile, n.shop.CountryCode)

	link := &Link{
		URL:     fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(message)),
		Message: message,
		Phone:   phone,
	}

	entry := &model.NotificationLog{
		DeviceID:       ticket.ID,
		TicketID:       ticket.TicketID,
		CustomerName:   ticket.CustomerName,
		CustomerMobile: ticket.CustomerMobile,
		MessageType:    msgType,
		Language:       lang,
		Timestamp:      n.now(),
	}
	if err := n.logRepo.Append(ctx, entry); err != nil {
		n.log.Error().Err(err).Str("ticket_id", ticket.TicketID).Msg("failed to log notification")
	}

	return link, nil
}

// History returns every notification issued for a ticket, oldest first.
func (n *WhatsAppNotifier) History(ctx context.Context, ticketID string) ([]model.NotificationLog, error) {
	return n.logRepo.ListByTicketID(ctx, ticketID)
}

// InternationalPhone strips formatting and prefixes the country code to plain
// 10-digit numbers.
func InternationalPhone(mobile, countryCode string) string {
	digits := utils.NormalizeMobile(mobile)
	if len(digits) == 10 {
		return countryCode + digits
	}
	return digits
}

// RenderMessage picks the template for the message type and language.
func (n *WhatsAppNotifier) RenderMessage(ticket *model.Ticket, msgType model.MessageType, lang model.MessageLanguage) (string, error) {
	switch lang {
	case model.LanguageEnglish, model.LanguageHindi:
	default:
		return "", fmt.Errorf("unknown message language %q", lang)
	}

	switch msgType {
	case model.MessageTypeHandover:
		return n.handoverMessage(ticket, lang), nil
	case model.MessageTypePayment:
		return n.paymentMessage(ticket, lang), nil
	case model.MessageTypeReturn:
		return n.returnMessage(ticket, lang), nil
	}
	return "", fmt.Errorf("unknown message type %q", msgType)
}

func (n *WhatsAppNotifier) handoverMessage(t *model.Ticket, lang model.MessageLanguage) string {
	if lang == model.LanguageHindi {
		return fmt.Sprintf(
			"नमस्ते %s! 👋\n\nआपका *%s %s* रिपेयर होकर तैयार है।\n\n📋 *टिकट आईडी:* %s\n\nभुगतान पहले ही ऑनलाइन प्राप्त हो चुका है। कृपया अपना डिवाइस ले जाएं।\n\n%s",
			t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, n.footer(lang))
	}
	return fmt.Sprintf(
		"Hello %s! 👋\n\nYour *%s %s* has been repaired and is ready for pickup.\n\n📋 *Ticket ID:* %s\n\nYour payment was already received online. Please collect your device at your convenience.\n\n%s",
		t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, n.footer(lang))
}

func (n *WhatsAppNotifier) paymentMessage(t *model.Ticket, lang model.MessageLanguage) string {
	amount := t.FinalAmount
	if amount == 0 {
		amount = t.EstimatedCost
	}
	if lang == model.LanguageHindi {
		return fmt.Sprintf(
			"नमस्ते %s! 👋\n\nआपका *%s %s* रिपेयर होकर तैयार है।\n\n📋 *टिकट आईडी:* %s\n💰 *देय राशि:* ₹%.0f\n\nकृपया डिवाइस लेते समय भुगतान करें।\n\n%s",
			t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, amount, n.footer(lang))
	}
	return fmt.Sprintf(
		"Hello %s! 👋\n\nYour *%s %s* has been repaired and is ready for pickup.\n\n📋 *Ticket ID:* %s\n💰 *Amount due:* ₹%.0f\n\nPlease pay at the counter when collecting your device.\n\n%s",
		t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, amount, n.footer(lang))
}

func (n *WhatsAppNotifier) returnMessage(t *model.Ticket, lang model.MessageLanguage) string {
	reason := t.ReturnReason
	if lang == model.LanguageHindi {
		if reason == "" {
			reason = "तकनीकी सीमाओं के कारण"
		}
		return fmt.Sprintf(
			"नमस्ते %s! 👋\n\nआपके *%s %s* के बारे में\n\n📋 *टिकट आईडी:* %s\n\nपूरी जांच के बाद, हमें यह बताते हुए खेद है कि आपका डिवाइस रिपेयर नहीं हो सकता:\n%s\n\nआपका डिवाइस वापसी के लिए तैयार है। *कोई शुल्क नहीं* लगेगा।\n\n%s",
			t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, reason, n.footer(lang))
	}
	if reason == "" {
		reason = "Due to technical limitations"
	}
	return fmt.Sprintf(
		"Hello %s! 👋\n\nRegarding your *%s %s*\n\n📋 *Ticket ID:* %s\n\nAfter a thorough inspection, we regret to inform you that your device cannot be repaired:\n%s\n\nYour device is ready for return. *No charges* apply.\n\n%s",
		t.CustomerName, t.DeviceBrand, t.DeviceModel, t.TicketID, reason, n.footer(lang))
}

func (n *WhatsAppNotifier) footer(lang model.MessageLanguage) string {
	if lang == model.LanguageHindi {
		return fmt.Sprintf("📍 *पता:* %s\n🕒 *समय:* %s\n\nकिसी भी प्रश्न के लिए कॉल करें: %s",
			n.shop.Address, n.shop.Hours, n.shop.Phone)
	}
	return fmt.Sprintf("📍 *Address:* %s\n🕒 *Hours:* %s\n\nFor any questions, call: %s",
		n.shop.Address, n.shop.Hours, n.shop.Phone)
}
