package repository

import (
	"context"

	"gorm.io/gorm"

	"repairdesk-service/internal/model"
)

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Append(ctx context.Context, entry *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *NotificationLogRepository) ListByTicketID(ctx context.Context, ticketID string) ([]model.NotificationLog, error) {
	var entries []model.NotificationLog
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}
