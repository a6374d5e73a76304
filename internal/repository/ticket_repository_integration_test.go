package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"repairdesk-service/internal/db"
	"repairdesk-service/internal/model"
)

func setupTestRepo(t *testing.T) *TicketRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewTicketRepository(database)
}

func seedTicket(t *testing.T, ctx context.Context, repo *TicketRepository, ticket *model.Ticket) {
	t.Helper()
	if err := repo.Create(ctx, ticket); err != nil {
		t.Fatalf("seed ticket %s: %v", ticket.TicketID, err)
	}
	t.Cleanup(func() {
		if err := repo.Delete(context.Background(), ticket.ID.String()); err != nil {
			t.Errorf("clean up ticket %s: %v", ticket.TicketID, err)
		}
	})
}

func TestListPaymentCollectedSurvivesPickup(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	now := time.Now()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	paidAt := yesterday.Add(15 * time.Hour)

	// Paid yesterday, customer picked the device up today.
	ticket := &model.Ticket{
		TicketID:           "990101901",
		CustomerName:       "Ravi Kumar",
		CustomerMobile:     "9876543210",
		DeviceBrand:        "Samsung",
		DeviceModel:        "Galaxy S21",
		DeviceProblem:      "Broken screen",
		Priority:           model.PriorityNormal,
		EstimatedCost:      1500,
		FinalAmount:        1500,
		Status:             model.TicketStatusPaymentCollected,
		PaymentStatus:      model.PaymentStatusCollected,
		PaymentMethod:      model.PaymentMethodCash,
		PaymentCollectedAt: &paidAt,
	}
	seedTicket(t, ctx, repo, ticket)

	pickupAt := now
	ticket.Status = model.TicketStatusPickedUp
	ticket.CustomerPickupAt = &pickupAt
	ticket.HandoverCompleted = true
	if err := repo.Update(ctx, ticket); err != nil {
		t.Fatalf("confirm pickup: %v", err)
	}

	paid, err := repo.ListPaymentCollected(ctx, yesterday, yesterday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListPaymentCollected: %v", err)
	}
	if !containsTicket(paid, ticket.TicketID) {
		t.Fatalf("picked-up ticket missing from the day it was paid; got %d tickets", len(paid))
	}

	// The pickup day itself must not double-count it.
	today := yesterday.AddDate(0, 0, 1)
	paid, err = repo.ListPaymentCollected(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListPaymentCollected today: %v", err)
	}
	if containsTicket(paid, ticket.TicketID) {
		t.Fatal("ticket counted on the pickup day instead of the payment day")
	}
}

func TestListPaymentCollectedExcludesUnpaidPickup(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	returnedAt := windowStart.Add(10 * time.Hour)
	pickedUpAt := windowStart.Add(12 * time.Hour)

	// A returned device picked up without any payment has the same final
	// status but no collection timestamp.
	ticket := &model.Ticket{
		TicketID:          "990101902",
		CustomerName:      "Priya Shah",
		CustomerMobile:    "9123456789",
		DeviceBrand:       "Apple",
		DeviceModel:       "iPhone 13",
		DeviceProblem:     "Water damage",
		Priority:          model.PriorityNormal,
		EstimatedCost:     2000,
		Status:            model.TicketStatusPickedUp,
		PaymentStatus:     model.PaymentStatusUnpaid,
		Unrepairable:      true,
		ReturnReason:      "Cannot be repaired",
		ReturnAt:          &returnedAt,
		CustomerPickupAt:  &pickedUpAt,
		HandoverCompleted: true,
	}
	seedTicket(t, ctx, repo, ticket)

	paid, err := repo.ListPaymentCollected(ctx, windowStart, windowStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListPaymentCollected: %v", err)
	}
	if containsTicket(paid, ticket.TicketID) {
		t.Fatal("unpaid return appeared in the paid list")
	}
}

func containsTicket(tickets []model.Ticket, ticketID string) bool {
	for i := range tickets {
		if tickets[i].TicketID == ticketID {
			return true
		}
	}
	return false
}
