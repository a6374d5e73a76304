package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketStatusNotStarted       TicketStatus = "NOT_STARTED"
	TicketStatusInProgress       TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted        TicketStatus = "COMPLETED"
	TicketStatusUnrepairable     TicketStatus = "UNREPAIRABLE"
	TicketStatusPaymentCollected TicketStatus = "PAYMENT_COLLECTED"
	TicketStatusHandedOver       TicketStatus = "HANDED_OVER"
	TicketStatusReturned         TicketStatus = "RETURNED"
	TicketStatusPickedUp         TicketStatus = "PICKED_UP"
)

// ParseTicketStatus rejects anything outside the closed status set. Unknown
// values fail loudly instead of silently dropping the ticket from every view.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusNotStarted, TicketStatusInProgress, TicketStatusCompleted,
		TicketStatusUnrepairable, TicketStatusPaymentCollected,
		TicketStatusHandedOver, TicketStatusReturned, TicketStatusPickedUp:
		return TicketStatus(raw), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
)

// IsUrgent groups Urgent and High together; reports treat them as one band.
func (p Priority) IsUrgent() bool {
	return p == PriorityUrgent || p == PriorityHigh
}

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodUPI   PaymentMethod = "upi"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodSplit PaymentMethod = "split"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
	PaymentStatusPaidOnline PaymentStatus = "paid_online"
	PaymentStatusCollected  PaymentStatus = "collected"
)

// SplitLeg is one method/amount pair of a split payment.
type SplitLeg struct {
	Method PaymentMethod `json:"method"`
	Amount float64       `json:"amount"`
}

type Ticket struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TicketID string    `gorm:"type:varchar(16);not null;uniqueIndex" json:"ticket_id"`

	CustomerName    string `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerMobile  string `gorm:"type:varchar(10);not null;index" json:"customer_mobile"`
	CustomerEmail   string `gorm:"type:varchar(120)" json:"customer_email"`
	CustomerAddress string `gorm:"type:text" json:"customer_address"`

	DeviceBrand   string   `gorm:"type:varchar(60);not null" json:"device_brand"`
	DeviceModel   string   `gorm:"type:varchar(60);not null" json:"device_model"`
	DeviceProblem string   `gorm:"type:text;not null" json:"device_problem"`
	Priority      Priority `gorm:"type:varchar(10);not null;default:Normal" json:"priority"`

	EstimatedCost float64 `gorm:"not null" json:"estimated_cost"`
	FinalAmount   float64 `json:"final_amount"`
	ServiceCost   float64 `json:"service_cost"`
	PartsCost     float64 `json:"parts_cost"`

	Status        TicketStatus   `gorm:"type:ticket_status;not null;default:NOT_STARTED;index" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);not null;default:unpaid;index" json:"payment_status"`
	PaymentMethod PaymentMethod  `gorm:"type:varchar(10)" json:"payment_method"`
	PaymentNotes  string         `gorm:"type:text" json:"payment_notes"`
	SplitPayments datatypes.JSON `gorm:"type:jsonb" json:"split_payments,omitempty"`

	ReturnReason      string `gorm:"type:text" json:"return_reason"`
	ReturnDetails     string `gorm:"type:text" json:"return_details"`
	Unrepairable      bool   `gorm:"not null;default:false" json:"unrepairable"`
	HandoverCompleted bool   `gorm:"not null;default:false" json:"handover_completed"`

	// Online payment notifications are broadcast once per ticket.
	PaymentNotified bool `gorm:"not null;default:false" json:"payment_notified"`

	CompletedAt        *time.Time `json:"completed_at"`
	PaymentCollectedAt *time.Time `json:"payment_collected_at"`
	HandoverAt         *time.Time `json:"handover_at"`
	ReturnAt           *time.Time `json:"return_at"`
	CustomerPickupAt   *time.Time `json:"customer_pickup_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Ticket) TableName() string {
	return "repair_tickets"
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasTerminalMarker reports whether any terminal disposition has been recorded.
// A ticket with a terminal marker is excluded from every active work queue.
func (t *Ticket) HasTerminalMarker() bool {
	if t.HandoverAt != nil && t.Status == TicketStatusHandedOver {
		return true
	}
	if t.PaymentCollectedAt != nil && t.Status == TicketStatusPaymentCollected {
		return true
	}
	if t.CustomerPickupAt != nil {
		return true
	}
	return t.HandoverCompleted
}

// DeviceInfo is the "brand model" snapshot stored on payment log rows.
func (t *Ticket) DeviceInfo() string {
	return t.DeviceBrand + " " + t.DeviceModel
}
