package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"repairdesk-service/internal/hub"
	"repairdesk-service/internal/model"
	"repairdesk-service/internal/repository"
	"repairdesk-service/internal/utils"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrLockedOut        = errors.New("locked out")
	ErrNoData           = errors.New("no data")
)

// EventPublisher receives ticket-change events after successful mutations.
type EventPublisher interface {
	Publish(eventType string, ticket *model.Ticket)
}

type TicketService struct {
	db             *gorm.DB
	ticketRepo     *repository.TicketRepository
	paymentLogRepo *repository.PaymentLogRepository
	events         EventPublisher
	log            zerolog.Logger
	now            func() time.Time
}

func NewTicketService(
	db *gorm.DB,
	ticketRepo *repository.TicketRepository,
	paymentLogRepo *repository.PaymentLogRepository,
	events EventPublisher,
	log zerolog.Logger,
) *TicketService {
	return &TicketService{
		db:             db,
		ticketRepo:     ticketRepo,
		paymentLogRepo: paymentLogRepo,
		events:         events,
		log:            log,
		now:            time.Now,
	}
}

type RegisterTicketInput struct {
	CustomerName    string
	CustomerMobile  string
	CustomerEmail   string
	CustomerAddress string
	DeviceBrand     string
	DeviceModel     string
	DeviceProblem   string
	EstimatedCost   float64
	Priority        string
}

// Register performs device intake: validates the form, allocates a unique
// human-facing ticket id and stores the ticket in NOT_STARTED.
func (s *TicketService) Register(ctx context.Context, input RegisterTicketInput) (*model.Ticket, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerMobile = utils.NormalizeMobile(input.CustomerMobile)
	input.DeviceBrand = strings.TrimSpace(input.DeviceBrand)
	input.DeviceModel = strings.TrimSpace(input.DeviceModel)
	input.DeviceProblem = strings.TrimSpace(input.DeviceProblem)

	if input.CustomerName == "" || input.DeviceBrand == "" ||
		input.DeviceModel == "" || input.DeviceProblem == "" {
		return nil, fmt.Errorf("%w: all required fields must be filled", ErrInvalidInput)
	}
	if !utils.IsValidMobile(input.CustomerMobile) {
		return nil, fmt.Errorf("%w: mobile must be a 10-digit number", ErrInvalidInput)
	}
	if input.EstimatedCost <= 0 {
		return nil, fmt.Errorf("%w: estimated cost must be positive", ErrInvalidInput)
	}

	priority := model.Priority(input.Priority)
	switch priority {
	case "":
		priority = model.PriorityNormal
	case model.PriorityLow, model.PriorityNormal, model.PriorityUrgent, model.PriorityHigh:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}

	ticketID, err := s.allocateTicketID(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &model.Ticket{
		TicketID:        ticketID,
		CustomerName:    input.CustomerName,
		CustomerMobile:  input.CustomerMobile,
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerAddress: strings.TrimSpace(input.CustomerAddress),
		DeviceBrand:     input.DeviceBrand,
		DeviceModel:     input.DeviceModel,
		DeviceProblem:   input.DeviceProblem,
		EstimatedCost:   input.EstimatedCost,
		Priority:        priority,
		Status:          model.TicketStatusNotStarted,
		PaymentStatus:   model.PaymentStatusUnpaid,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(hub.EventTicketCreated, ticket)
	return ticket, nil
}

// allocateTicketID retries the date+suffix generator until it finds an id not
// yet in the store.
func (s *TicketService) allocateTicketID(ctx context.Context) (string, error) {
	for i := 0; i < 10; i++ {
		candidate := utils.GenerateTicketID(s.now())
		exists, err := s.ticketRepo.TicketIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique ticket id", ErrConflict)
}

// Get resolves either the store uuid or the human-facing ticket id.
func (s *TicketService) Get(ctx context.Context, id string) (*model.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: ticket id is required", ErrInvalidInput)
	}

	var (
		ticket *model.Ticket
		err    error
	)
	if _, parseErr := uuid.Parse(id); parseErr == nil {
		ticket, err = s.ticketRepo.GetByID(ctx, id)
	} else {
		ticket, err = s.ticketRepo.GetByTicketID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// Queues returns the classified dashboard work queues.
func (s *TicketService) Queues(ctx context.Context) (QueueSet, error) {
	tickets, err := s.ticketRepo.ListActive(ctx)
	if err != nil {
		return QueueSet{}, err
	}
	return ClassifyAll(tickets)
}

// Registry returns the filtered registry view.
func (s *TicketService) Registry(ctx context.Context, filter RegistryFilter) ([]model.Ticket, error) {
	tickets, err := s.ticketRepo.ListRegistry(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRegistry(tickets, filter, s.now()), nil
}

func (s *TicketService) Search(ctx context.Context, term string) ([]model.Ticket, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidInput)
	}
	return s.ticketRepo.Search(ctx, term)
}

// StartRepair moves an intake ticket onto the bench.
func (s *TicketService) StartRepair(ctx context.Context, id string) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		if t.Status != model.TicketStatusNotStarted {
			return fmt.Errorf("%w: repair already started for %s", ErrConflict, t.TicketID)
		}
		t.Status = model.TicketStatusInProgress
		return nil
	})
}

// CompleteRepair marks the repair done; the ticket then classifies into the
// handover or payment queue depending on its payment status.
func (s *TicketService) CompleteRepair(ctx context.Context, id string, serviceCost, partsCost float64) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		if t.Status != model.TicketStatusNotStarted && t.Status != model.TicketStatusInProgress {
			return fmt.Errorf("%w: ticket %s is not in repair", ErrConflict, t.TicketID)
		}
		if serviceCost < 0 || partsCost < 0 {
			return fmt.Errorf("%w: costs cannot be negative", ErrInvalidInput)
		}
		t.Status = model.TicketStatusCompleted
		t.ServiceCost = serviceCost
		t.PartsCost = partsCost
		t.CompletedAt = &now
		return nil
	})
}

// MarkUnrepairable flags the device for return without charge.
func (s *TicketService) MarkUnrepairable(ctx context.Context, id, reason, details string) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		switch t.Status {
		case model.TicketStatusNotStarted, model.TicketStatusInProgress, model.TicketStatusCompleted:
		default:
			return fmt.Errorf("%w: ticket %s already left the repair phase", ErrConflict, t.TicketID)
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = "Cannot be repaired"
		}
		t.Status = model.TicketStatusUnrepairable
		t.Unrepairable = true
		t.ReturnReason = reason
		t.ReturnDetails = strings.TrimSpace(details)
		t.CompletedAt = &now
		return nil
	})
}

// Handover closes out a device that was already paid online.
func (s *TicketService) Handover(ctx context.Context, id string) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		if t.Status != model.TicketStatusCompleted {
			return fmt.Errorf("%w: ticket %s is not ready for handover", ErrConflict, t.TicketID)
		}
		if t.PaymentStatus != model.PaymentStatusPaidOnline {
			return fmt.Errorf("%w: ticket %s has no online payment, collect payment instead", ErrConflict, t.TicketID)
		}
		t.Status = model.TicketStatusHandedOver
		t.HandoverAt = &now
		return nil
	})
}

type SplitLegInput struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

type CollectPaymentInput struct {
	Amount float64
	Method string
	Notes  string

	// Split mode: Legs non-empty, Amount is the declared total.
	Legs []SplitLegInput

	// CompleteHandover collapses payment and handover into one counter
	// action: the customer pays and walks out with the device immediately.
	CompleteHandover bool
}

// CollectPayment captures an in-person payment for a completed repair. The
// ticket update and the payment-log append happen in one transaction so the
// ledger cannot silently diverge from the ticket snapshot.
func (s *TicketService) CollectPayment(ctx context.Context, id string, input CollectPaymentInput) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	logEntries, err := preparePaymentCollection(ticket, input, s.now())
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ticket).Error; err != nil {
			return err
		}
		for i := range logEntries {
			if err := s.paymentLogRepo.AppendTx(tx, &logEntries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(hub.EventTicketUpdated, ticket)
	return ticket, nil
}

// preparePaymentCollection validates the payment, applies it to the ticket
// and returns the ledger rows to append. One row per leg; a one-step
// pay-and-handover logs an offline collection instead of a plain single
// payment.
func preparePaymentCollection(ticket *model.Ticket, input CollectPaymentInput, now time.Time) ([]model.PaymentLog, error) {
	if ticket.Status != model.TicketStatusCompleted {
		return nil, fmt.Errorf("%w: ticket %s is not awaiting payment", ErrConflict, ticket.TicketID)
	}
	if ticket.PaymentStatus == model.PaymentStatusPaidOnline {
		return nil, fmt.Errorf("%w: ticket %s was paid online, hand it over instead", ErrConflict, ticket.TicketID)
	}

	var logEntries []model.PaymentLog

	if len(input.Legs) > 0 {
		legs, err := ValidateSplitPayment(input.Amount, input.Legs)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(legs)
		if err != nil {
			return nil, err
		}

		ticket.PaymentMethod = model.PaymentMethodSplit
		ticket.SplitPayments = datatypes.JSON(encoded)
		for _, leg := range legs {
			logEntries = append(logEntries, model.PaymentLog{
				TicketID:     ticket.TicketID,
				DeviceID:     ticket.ID,
				CustomerName: ticket.CustomerName,
				DeviceInfo:   ticket.DeviceInfo(),
				Amount:       leg.Amount,
				Method:       leg.Method,
				Type:         model.PaymentLogTypeSplit,
				TotalAmount:  input.Amount,
				SplitCount:   len(legs),
				Notes:        input.Notes,
				Timestamp:    now,
			})
		}
	} else {
		if input.Amount <= 0 {
			return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
		}
		method := model.PaymentMethod(input.Method)
		switch method {
		case model.PaymentMethodCash, model.PaymentMethodUPI, model.PaymentMethodCard:
		default:
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, input.Method)
		}

		logType := model.PaymentLogTypeSingle
		if input.CompleteHandover {
			logType = model.PaymentLogTypeOffline
		}

		ticket.PaymentMethod = method
		logEntries = append(logEntries, model.PaymentLog{
			TicketID:     ticket.TicketID,
			DeviceID:     ticket.ID,
			CustomerName: ticket.CustomerName,
			DeviceInfo:   ticket.DeviceInfo(),
			Amount:       input.Amount,
			Method:       method,
			Type:         logType,
			Notes:        input.Notes,
			Timestamp:    now,
		})
	}

	ticket.Status = model.TicketStatusPaymentCollected
	ticket.PaymentStatus = model.PaymentStatusCollected
	ticket.FinalAmount = input.Amount
	ticket.PaymentNotes = input.Notes
	ticket.PaymentCollectedAt = &now

	if input.CompleteHandover {
		ticket.HandoverAt = &now
		ticket.HandoverCompleted = true
	}

	return logEntries, nil
}

// ValidateSplitPayment checks every leg and the balance against the declared
// total. Amounts within a paisa of the total are accepted.
func ValidateSplitPayment(total float64, legs []SplitLegInput) ([]model.SplitLeg, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: at least one split leg is required", ErrInvalidInput)
	}

	var (
		out       []model.SplitLeg
		collected float64
	)
	for _, leg := range legs {
		method := model.PaymentMethod(leg.Method)
		switch method {
		case model.PaymentMethodCash, model.PaymentMethodUPI, model.PaymentMethodCard:
		default:
			return nil, fmt.Errorf("%w: every split needs a valid payment method", ErrInvalidInput)
		}
		if leg.Amount <= 0 {
			return nil, fmt.Errorf("%w: every split needs a positive amount", ErrInvalidInput)
		}
		out = append(out, model.SplitLeg{Method: method, Amount: leg.Amount})
		collected += leg.Amount
	}

	if math.Abs(collected-total) > 0.01 {
		return nil, fmt.Errorf("%w: split payments must equal the total amount", ErrInvalidInput)
	}
	return out, nil
}

// DecodeSplitLegs reads the stored split breakdown off a ticket.
func DecodeSplitLegs(raw datatypes.JSON) ([]model.SplitLeg, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var legs []model.SplitLeg
	if err := json.Unmarshal(raw, &legs); err != nil {
		return nil, err
	}
	return legs, nil
}

// ReturnToCustomer marks an unrepairable device as awaiting pickup.
func (s *TicketService) ReturnToCustomer(ctx context.Context, id, reason, details string) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		switch t.Status {
		case model.TicketStatusUnrepairable, model.TicketStatusCompleted,
			model.TicketStatusNotStarted, model.TicketStatusInProgress:
		default:
			return fmt.Errorf("%w: ticket %s cannot be returned from %s", ErrConflict, t.TicketID, t.Status)
		}
		if reason = strings.TrimSpace(reason); reason != "" {
			t.ReturnReason = reason
		}
		if t.ReturnReason == "" {
			return fmt.Errorf("%w: a return reason is required", ErrInvalidInput)
		}
		if details = strings.TrimSpace(details); details != "" {
			t.ReturnDetails = details
		}
		t.Status = model.TicketStatusReturned
		t.ReturnAt = &now
		return nil
	})
}

// ConfirmPickup records that the customer physically collected the device,
// the terminal state for both handover and return flows.
func (s *TicketService) ConfirmPickup(ctx context.Context, id string) (*model.Ticket, error) {
	return s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		switch t.Status {
		case model.TicketStatusReturned, model.TicketStatusHandedOver, model.TicketStatusPaymentCollected:
		default:
			return fmt.Errorf("%w: ticket %s has nothing to pick up", ErrConflict, t.TicketID)
		}
		t.Status = model.TicketStatusPickedUp
		t.CustomerPickupAt = &now
		t.HandoverCompleted = true
		return nil
	})
}

// RecordOnlinePayment is called when the payment provider confirms an online
// payment for a ticket. One broadcast per ticket.
func (s *TicketService) RecordOnlinePayment(ctx context.Context, id string) (*model.Ticket, error) {
	ticket, err := s.transition(ctx, id, func(t *model.Ticket, now time.Time) error {
		if t.PaymentStatus == model.PaymentStatusCollected {
			return fmt.Errorf("%w: payment already collected for %s", ErrConflict, t.TicketID)
		}
		t.PaymentStatus = model.PaymentStatusPaidOnline
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !ticket.PaymentNotified {
		ticket.PaymentNotified = true
		if err := s.ticketRepo.Update(ctx, ticket); err != nil {
			return nil, err
		}
		s.publish(hub.EventOnlinePayment, ticket)
	}
	return ticket, nil
}

// Delete permanently removes a ticket. Authorization is the handler's job via
// the admin gate; this is the only hard-delete path in the system.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ticketRepo.Delete(ctx, ticket.ID.String()); err != nil {
		return err
	}
	s.log.Info().Str("ticket_id", ticket.TicketID).Msg("ticket permanently deleted")
	s.publish(hub.EventTicketDeleted, ticket)
	return nil
}

// PaymentHistory returns the append-only ledger entries for one ticket,
// oldest first.
func (s *TicketService) PaymentHistory(ctx context.Context, ticketID string) ([]model.PaymentLog, error) {
	return s.paymentLogRepo.ListByTicketID(ctx, ticketID)
}

func (s *TicketService) transition(ctx context.Context, id string, mutate func(*model.Ticket, time.Time) error) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(ticket, s.now()); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(hub.EventTicketUpdated, ticket)
	return ticket, nil
}

func (s *TicketService) publish(eventType string, ticket *model.Ticket) {
	if s.events != nil {
		s.events.Publish(eventType, ticket)
	}
}
