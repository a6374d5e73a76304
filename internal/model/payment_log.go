package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentLogType string

const (
	PaymentLogTypeSingle  PaymentLogType = "single_payment"
	PaymentLogTypeSplit   PaymentLogType = "split_payment"
	PaymentLogTypeOffline PaymentLogType = "offline_collection"
)

// PaymentLog is an append-only ledger row, one per transaction leg. Split
// payments produce one row per leg. Rows are never updated or deleted.
type PaymentLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TicketID string    `gorm:"type:varchar(16);not null;index" json:"ticket_id"`
	DeviceID uuid.UUID `gorm:"type:uuid;not null;index" json:"device_id"`

	CustomerName string `gorm:"type:varchar(120)" json:"customer_name"`
	DeviceInfo   string `gorm:"type:varchar(130)" json:"device_info"`

	Amount float64        `gorm:"not null" json:"amount"`
	Method PaymentMethod  `gorm:"type:varchar(10);not null" json:"method"`
	Type   PaymentLogType `gorm:"type:varchar(20);not null" json:"type"`

	// Set on split legs only: the declared total and number of legs.
	TotalAmount float64 `json:"total_amount,omitempty"`
	SplitCount  int     `json:"split_count,omitempty"`

	Notes     string    `gorm:"type:text" json:"notes"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (PaymentLog) TableName() string {
	return "payment_logs"
}

func (p *PaymentLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
