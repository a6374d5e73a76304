package service

import (
	"fmt"

	"repairdesk-service/internal/model"
)

// Bucket is the work queue a ticket belongs to on the front-desk dashboard.
// Every ticket lands in exactly one bucket; BucketNone means the ticket is
// hidden from all active views (terminal or still in repair).
type Bucket string

const (
	BucketNone             Bucket = "none"
	BucketAwaitingPayment  Bucket = "awaiting_payment"
	BucketReadyForHandover Bucket = "ready_for_handover"
	BucketReturnPending    Bucket = "return_pending"
)

// Classify places a ticket into its dashboard bucket.
//
// Return triage runs before the payment/handover checks: a device that cannot
// be repaired goes to the return queue even if an online payment arrived for
// it. Terminal markers win over everything. An unrecognized status is an
// error, not a silent exclusion.
func Classify(t *model.Ticket) (Bucket, error) {
	if _, err := model.ParseTicketStatus(string(t.Status)); err != nil {
		return BucketNone, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if t.HasTerminalMarker() {
		return BucketNone, nil
	}

	if isForReturn(t) {
		return BucketReturnPending, nil
	}

	switch t.Status {
	case model.TicketStatusCompleted:
		if t.PaymentStatus == model.PaymentStatusPaidOnline {
			return BucketReadyForHandover, nil
		}
		return BucketAwaitingPayment, nil
	case model.TicketStatusNotStarted, model.TicketStatusInProgress:
		return BucketNone, nil
	case model.TicketStatusUnrepairable, model.TicketStatusReturned:
		// Covered by isForReturn; reaching here means a RETURNED ticket that
		// was already picked up, which HasTerminalMarker caught above.
		return BucketNone, nil
	case model.TicketStatusPaymentCollected, model.TicketStatusHandedOver, model.TicketStatusPickedUp:
		return BucketNone, nil
	}

	return BucketNone, fmt.Errorf("%w: unhandled ticket status %q", ErrInvalidInput, t.Status)
}

func isForReturn(t *model.Ticket) bool {
	if t.Status == model.TicketStatusUnrepairable || t.Unrepairable {
		return true
	}
	if t.Status == model.TicketStatusReturned && t.CustomerPickupAt == nil && !t.HandoverCompleted {
		return true
	}
	return t.ReturnReason != "" && t.ReturnAt != nil
}

// QueueSet holds the partitioned active work queues.
type QueueSet struct {
	Handover []model.Ticket `json:"handover"`
	Payment  []model.Ticket `json:"payment"`
	Returns  []model.Ticket `json:"returns"`
}

// ClassifyAll partitions tickets into the three active queues, preserving
// input order. A single bad record fails the whole partition so the operator
// sees the data problem instead of a quietly shorter list.
func ClassifyAll(tickets []model.Ticket) (QueueSet, error) {
	var queues QueueSet
	for i := range tickets {
		bucket, err := Classify(&tickets[i])
		if err != nil {
			return QueueSet{}, fmt.Errorf("ticket %s: %w", tickets[i].TicketID, err)
		}
		switch bucket {
		case BucketReadyForHandover:
			queues.Handover = append(queues.Handover, tickets[i])
		case BucketAwaitingPayment:
			queues.Payment = append(queues.Payment, tickets[i])
		case BucketReturnPending:
			queues.Returns = append(queues.Returns, tickets[i])
		}
	}
	return queues, nil
}
