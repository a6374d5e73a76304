package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"repairdesk-service/internal/model"
)

// PaymentLogRepository appends to and reads the payment ledger. The ledger is
// append-only: no update or delete methods exist.
type PaymentLogRepository struct {
	db *gorm.DB
}

func NewPaymentLogRepository(db *gorm.DB) *PaymentLogRepository {
	return &PaymentLogRepository{db: db}
}

func (r *PaymentLogRepository) Append(ctx context.Context, entry *model.PaymentLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PaymentLogRepository) AppendTx(tx *gorm.DB, entry *model.PaymentLog) error {
	return tx.Create(entry).Error
}

func (r *PaymentLogRepository) ListByWindow(ctx context.Context, from, to time.Time) ([]model.PaymentLog, error) {
	var entries []model.PaymentLog
	err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}

func (r *PaymentLogRepository) ListByTicketID(ctx context.Context, ticketID string) ([]model.PaymentLog, error) {
	var entries []model.PaymentLog
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}
