package service

import (
	"testing"
	"time"

	"repairdesk-service/internal/model"
)

func TestClassify(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		ticket model.Ticket
		want   Bucket
	}{
		{
			name:   "not started stays hidden",
			ticket: model.Ticket{TicketID: "250901100", Status: model.TicketStatusNotStarted},
			want:   BucketNone,
		},
		{
			name:   "in progress stays hidden",
			ticket: model.Ticket{TicketID: "250901101", Status: model.TicketStatusInProgress},
			want:   BucketNone,
		},
		{
			name:   "completed unpaid goes to payment queue",
			ticket: model.Ticket{TicketID: "250901102", Status: model.TicketStatusCompleted, PaymentStatus: model.PaymentStatusUnpaid},
			want:   BucketAwaitingPayment,
		},
		{
			name:   "completed paid online goes to handover queue",
			ticket: model.Ticket{TicketID: "250901103", Status: model.TicketStatusCompleted, PaymentStatus: model.PaymentStatusPaidOnline},
			want:   BucketReadyForHandover,
		},
		{
			name:   "unrepairable goes to return queue",
			ticket: model.Ticket{TicketID: "250901104", Status: model.TicketStatusUnrepairable},
			want:   BucketReturnPending,
		},
		{
			name: "return wins over online payment",
			ticket: model.Ticket{
				TicketID:      "250901105",
				Status:        model.TicketStatusCompleted,
				PaymentStatus: model.PaymentStatusPaidOnline,
				Unrepairable:  true,
			},
			want: BucketReturnPending,
		},
		{
			name: "return reason with return date wins over online payment",
			ticket: model.Ticket{
				TicketID:      "250901111",
				Status:        model.TicketStatusCompleted,
				PaymentStatus: model.PaymentStatusPaidOnline,
				ReturnReason:  "Cannot be repaired",
				ReturnAt:      &now,
			},
			want: BucketReturnPending,
		},
		{
			name: "returned without pickup stays in return queue",
			ticket: model.Ticket{
				TicketID:     "250901106",
				Status:       model.TicketStatusReturned,
				ReturnReason: "liquid damage",
				ReturnAt:     &now,
			},
			want: BucketReturnPending,
		},
		{
			name: "handover marker excludes",
			ticket: model.Ticket{
				TicketID:   "250901107",
				Status:     model.TicketStatusHandedOver,
				HandoverAt: &now,
			},
			want: BucketNone,
		},
		{
			name: "payment collected marker excludes",
			ticket: model.Ticket{
				TicketID:           "250901108",
				Status:             model.TicketStatusPaymentCollected,
				PaymentCollectedAt: &now,
			},
			want: BucketNone,
		},
		{
			name: "picked up return is terminal",
			ticket: model.Ticket{
				TicketID:         "250901109",
				Status:           model.TicketStatusPickedUp,
				CustomerPickupAt: &now,
			},
			want: BucketNone,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(&tt.ticket)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyUnknownStatus(t *testing.T) {
	ticket := model.Ticket{TicketID: "250901110", Status: "REPAIRING"}
	if _, err := Classify(&ticket); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestClassifyAllPartitionsEveryTicketOnce(t *testing.T) {
	now := time.Now()
	tickets := []model.Ticket{
		{TicketID: "250901200", Status: model.TicketStatusCompleted, PaymentStatus: model.PaymentStatusUnpaid},
		{TicketID: "250901201", Status: model.TicketStatusCompleted, PaymentStatus: model.PaymentStatusPaidOnline},
		{TicketID: "250901202", Status: model.TicketStatusUnrepairable},
		{TicketID: "250901203", Status: model.TicketStatusInProgress},
		{TicketID: "250901204", Status: model.TicketStatusHandedOver, HandoverAt: &now},
		{TicketID: "250901205", Status: model.TicketStatusCompleted, PaymentStatus: model.PaymentStatusUnpaid},
	}

	queues, err := ClassifyAll(tickets)
	if err != nil {
		t.Fatalf("ClassifyAll: %v", err)
	}

	if len(queues.Payment) != 2 || len(queues.Handover) != 1 || len(queues.Returns) != 1 {
		t.Fatalf("got payment=%d handover=%d returns=%d, want 2/1/1",
			len(queues.Payment), len(queues.Handover), len(queues.Returns))
	}

	// Input order survives partitioning.
	if queues.Payment[0].TicketID != "250901200" || queues.Payment[1].TicketID != "250901205" {
		t.Fatalf("payment queue out of order: %s, %s", queues.Payment[0].TicketID, queues.Payment[1].TicketID)
	}

	seen := map[string]int{}
	for _, q := range [][]model.Ticket{queues.Handover, queues.Payment, queues.Returns} {
		for _, ticket := range q {
			seen[ticket.TicketID]++
		}
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("ticket %s appears %d times across queues", id, count)
		}
	}
}

func TestClassifyAllFailsOnBadRecord(t *testing.T) {
	tickets := []model.Ticket{
		{TicketID: "250901300", Status: model.TicketStatusCompleted},
		{TicketID: "250901301", Status: "FIXING"},
	}
	if _, err := ClassifyAll(tickets); err == nil {
		t.Fatal("expected partition to fail on unknown status")
	}
}
