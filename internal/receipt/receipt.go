package receipt

import (
	"bytes"
	"html/template"

	"repairdesk-service/internal/config"
	"repairdesk-service/internal/model"
)

// Renderer produces the printable receipt fragment. The browser handles the
// print dialog and barcode drawing; the fragment exposes the ticket id in a
// dedicated element for the client-side encoder.
type Renderer struct {
	shop config.ShopConfig
	tmpl *template.Template
}

const receiptTemplate = `<div class="receipt">
  <div class="receipt-header">
    <h2>{{.Shop.Name}}</h2>
    <p>{{.Shop.Address}}</p>
    <p>{{.Shop.Phone}} | {{.Shop.Hours}}</p>
  </div>
  <div class="receipt-barcode" data-ticket-id="{{.Ticket.TicketID}}">{{.Ticket.TicketID}}</div>
  <table class="receipt-details">
    <tr><td>Ticket ID</td><td>{{.Ticket.TicketID}}</td></tr>
    <tr><td>Date</td><td>{{.Ticket.CreatedAt.Format "02/01/2006 03:04 PM"}}</td></tr>
    <tr><td>Customer</td><td>{{.Ticket.CustomerName}}</td></tr>
    <tr><td>Mobile</td><td>{{.Ticket.CustomerMobile}}</td></tr>
    <tr><td>Device</td><td>{{.Ticket.DeviceBrand}} {{.Ticket.DeviceModel}}</td></tr>
    <tr><td>Problem</td><td>{{.Ticket.DeviceProblem}}</td></tr>
    <tr><td>Priority</td><td>{{.Ticket.Priority}}</td></tr>
    <tr><td>Status</td><td>{{.Ticket.Status}}</td></tr>
    <tr><td>Estimated Cost</td><td>₹{{printf "%.2f" .Ticket.EstimatedCost}}</td></tr>
    {{if gt .Ticket.FinalAmount 0.0}}<tr><td>Amount Paid</td><td>₹{{printf "%.2f" .Ticket.FinalAmount}}</td></tr>
    <tr><td>Payment Method</td><td>{{.Ticket.PaymentMethod}}</td></tr>{{end}}
  </table>
  <div class="receipt-terms">
    <p>Please bring this receipt when collecting your device.</p>
    <p>Devices not collected within 30 days may incur storage charges.</p>
    <p>Warranty covers the repaired fault only.</p>
  </div>
  <div class="receipt-footer">Thank you for choosing {{.Shop.Name}}!</div>
</div>`

func NewRenderer(shop config.ShopConfig) (*Renderer, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, err
	}
	return &Renderer{shop: shop, tmpl: tmpl}, nil
}

func (r *Renderer) Render(ticket *model.Ticket) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Shop   config.ShopConfig
		Ticket *model.Ticket
	}{r.shop, ticket}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
