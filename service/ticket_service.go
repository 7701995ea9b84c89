package service

import (
	"context"
	"fmt"
	"regexp"

	"raffler/events"
	"raffler/gateway"
	"raffler/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ticketService struct {
	uowFactory UnitOfWorkFactory
	gateway    gateway.PaymentGateway
}

// NewTicketService creates a new ticket ledger service
func NewTicketService(uowFactory UnitOfWorkFactory, gw gateway.PaymentGateway) TicketService {
	return &ticketService{
		uowFactory: uowFactory,
		gateway:    gw,
	}
}

// ReserveTickets reserves a selection of numbers for a buyer. The raffle row
// lock plus the single transaction make the conflict check and the batch
// insert atomic: two concurrent requests for overlapping numbers cannot both
// succeed, and a failed request leaves no tickets behind.
func (s *ticketService) ReserveTickets(ctx context.Context, params ReserveTicketsParams) (*models.PurchaseBatch, *gateway.Payment, error) {
	if params.BuyerName == "" {
		return nil, nil, models.NewValidationError("buyer_name", "is required")
	}
	if !emailPattern.MatchString(params.BuyerEmail) {
		return nil, nil, models.NewValidationError("buyer_email", "invalid email format")
	}
	if params.PaymentMethod == "" {
		return nil, nil, models.NewValidationError("payment_method", "is required")
	}
	if len(params.Numbers) == 0 {
		return nil, nil, models.NewValidationError("numbers", "must select at least one number")
	}
	seen := make(map[int]bool, len(params.Numbers))
	for _, n := range params.Numbers {
		if seen[n] {
			return nil, nil, models.NewValidationError("numbers", fmt.Sprintf("duplicate number %d", n))
		}
		seen[n] = true
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Lock the raffle row: all reservations for one raffle serialize here
	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, params.RaffleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, nil, models.NewNotFoundError("raffle", params.RaffleID)
	}
	if !raffle.IsActive() {
		return nil, nil, models.NewInvalidStateError(fmt.Sprintf("raffle %d is not active", params.RaffleID))
	}

	for _, n := range params.Numbers {
		if !raffle.ValidNumber(n) {
			return nil, nil, models.NewValidationError("numbers",
				fmt.Sprintf("number %d is out of range 1..%d", n, raffle.TotalNumbers))
		}
	}

	// All-or-nothing conflict check against pending and completed tickets
	taken, err := uow.TicketRepository().GetActiveNumbers(ctx, params.RaffleID, params.Numbers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check number availability: %w", err)
	}
	if len(taken) > 0 {
		return nil, nil, models.NewConflictError("numbers already reserved", taken...)
	}

	purchaseID := uuid.New()
	tickets := make([]*models.Ticket, len(params.Numbers))
	for i, n := range params.Numbers {
		tickets[i] = &models.Ticket{
			RaffleID:      params.RaffleID,
			TicketNumber:  n,
			BuyerName:     params.BuyerName,
			BuyerEmail:    params.BuyerEmail,
			BuyerPhone:    params.BuyerPhone,
			PaymentStatus: models.PaymentStatusPending,
			PurchaseID:    &purchaseID,
		}
	}

	if err := uow.TicketRepository().CreateBatch(ctx, tickets); err != nil {
		return nil, nil, fmt.Errorf("failed to reserve tickets: %w", err)
	}

	totalAmount := float64(len(params.Numbers)) * raffle.TicketPrice

	// Register the payment with the provider while the reservation is still
	// uncommitted: a gateway failure rolls the whole batch back, leaving no
	// orphan pending tickets.
	var phone string
	if params.BuyerPhone != nil {
		phone = *params.BuyerPhone
	}
	payment, err := s.gateway.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:      totalAmount,
		Method:      params.PaymentMethod,
		PayerName:   params.BuyerName,
		PayerEmail:  params.BuyerEmail,
		PayerPhone:  phone,
		Description: fmt.Sprintf("Raffle tickets for %q", raffle.Title),
	})
	if err != nil {
		return nil, nil, models.NewDependencyError("payment gateway create payment", err)
	}

	if err := uow.TicketRepository().SetPaymentIDByPurchase(ctx, purchaseID, payment.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to record payment id: %w", err)
	}
	for _, t := range tickets {
		paymentID := payment.ID
		t.PaymentID = &paymentID
	}

	uow.EventBus().Publish(events.TicketsReservedEvent{
		RaffleID:      params.RaffleID,
		PurchaseID:    purchaseID,
		TicketNumbers: params.Numbers,
		BuyerName:     params.BuyerName,
		BuyerEmail:    params.BuyerEmail,
		TotalAmount:   totalAmount,
	})

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleID":   params.RaffleID,
		"purchaseID": purchaseID,
		"numbers":    params.Numbers,
		"amount":     totalAmount,
	}).Info("Tickets reserved")

	return &models.PurchaseBatch{
		PurchaseID:    purchaseID,
		RaffleID:      params.RaffleID,
		Tickets:       tickets,
		TicketNumbers: params.Numbers,
		TotalAmount:   totalAmount,
		PaymentMethod: params.PaymentMethod,
	}, payment, nil
}

// GetNumbers returns the live partition of a raffle's number range into
// sold, reserved and available sets
func (s *ticketService) GetNumbers(ctx context.Context, raffleID int64) (*models.NumberAvailability, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", raffleID)
	}

	sold, err := uow.TicketRepository().NumbersByStatus(ctx, raffleID, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to get sold numbers: %w", err)
	}
	reserved, err := uow.TicketRepository().NumbersByStatus(ctx, raffleID, models.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get reserved numbers: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	unavailable := make(map[int]bool, len(sold)+len(reserved))
	for _, n := range sold {
		unavailable[n] = true
	}
	for _, n := range reserved {
		unavailable[n] = true
	}

	available := make([]int, 0, raffle.TotalNumbers-len(unavailable))
	for n := 1; n <= raffle.TotalNumbers; n++ {
		if !unavailable[n] {
			available = append(available, n)
		}
	}

	return &models.NumberAvailability{
		TotalNumbers:     raffle.TotalNumbers,
		SoldNumbers:      sold,
		ReservedNumbers:  reserved,
		AvailableNumbers: available,
	}, nil
}
