package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"repairdesk-service/internal/model"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("ticket_id = ?", ticketID).
		Count(&count).Error
	return count > 0, err
}

func (r *TicketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Ticket{}).Error
}

// ListActive returns every ticket ordered by most recent update, the working
// set the dashboard classifier partitions into queues.
func (r *TicketRepository) ListActive(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// ListRegistry returns every ticket ordered by intake time for the registry view.
func (r *TicketRepository) ListRegistry(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// ListPaymentCollected returns tickets whose payment was collected inside the
// window, newest first. Keyed on the collection timestamp, not the current
// status: a later pickup moves the ticket to PICKED_UP but must not drop it
// from the report of the day it was paid.
func (r *TicketRepository) ListPaymentCollected(ctx context.Context, from, to time.Time) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.TicketStatus{model.TicketStatusPaymentCollected, model.TicketStatusPickedUp}).
		Where("payment_collected_at >= ? AND payment_collected_at < ?", from, to).
		Order("payment_collected_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// ListReturned returns tickets returned inside the window, newest first.
func (r *TicketRepository) ListReturned(ctx context.Context, from, to time.Time) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.TicketStatus{model.TicketStatusReturned, model.TicketStatusPickedUp}).
		Where("return_at >= ? AND return_at < ?", from, to).
		Order("return_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// Search mirrors the front-desk lookup: exact ticket id, exact mobile, or
// customer name prefix.
func (r *TicketRepository) Search(ctx context.Context, term string) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", term).
		Or("customer_mobile = ?", term).
		Or("customer_name ILIKE ?", term+"%").
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}
