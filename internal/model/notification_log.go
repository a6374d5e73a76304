package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageTypeHandover MessageType = "handover"
	MessageTypePayment  MessageType = "payment"
	MessageTypeReturn   MessageType = "return"
)

type MessageLanguage string

const (
	LanguageEnglish MessageLanguage = "english"
	LanguageHindi   MessageLanguage = "hindi"
)

// NotificationLog records an outbound customer message. The actual send happens
// in the operator's own chat client via a deep link, so no delivery state exists.
type NotificationLog struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeviceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"device_id"`
	TicketID       string          `gorm:"type:varchar(16);not null;index" json:"ticket_id"`
	CustomerName   string          `gorm:"type:varchar(120)" json:"customer_name"`
	CustomerMobile string          `gorm:"type:varchar(10)" json:"customer_mobile"`
	MessageType    MessageType     `gorm:"type:varchar(20);not null" json:"message_type"`
	Language       MessageLanguage `gorm:"type:varchar(10);not null" json:"language"`
	Timestamp      time.Time       `gorm:"not null" json:"timestamp"`
}

func (NotificationLog) TableName() string {
	return "whatsapp_logs"
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
