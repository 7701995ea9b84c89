package service

import (
	"context"
	"fmt"

	"raffler/events"
	"raffler/gateway"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

type paymentService struct {
	uowFactory UnitOfWorkFactory
	gateway    gateway.PaymentGateway
}

// NewPaymentService creates a new payment correlation service
func NewPaymentService(uowFactory UnitOfWorkFactory, gw gateway.PaymentGateway) PaymentService {
	return &paymentService{
		uowFactory: uowFactory,
		gateway:    gw,
	}
}

func validPaymentStatus(status models.PaymentStatus) bool {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusCancelled:
		return true
	}
	return false
}

// ConfirmTickets transitions the tickets matching the given numbers to the
// requested status. Transitions are permissive: callers may move a ticket
// back to pending, mirroring raw gateway callbacks. Re-confirming a completed
// ticket keeps its original purchased_at stamp.
func (s *paymentService) ConfirmTickets(ctx context.Context, raffleID int64, numbers []int, status models.PaymentStatus, externalPaymentID *string) ([]*models.Ticket, error) {
	if len(numbers) == 0 {
		return nil, models.NewValidationError("ticket_numbers", "must name at least one number")
	}
	if !validPaymentStatus(status) {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown payment status %q", status))
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	raffle, err := uow.RaffleRepository().GetByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", raffleID)
	}

	tickets, err := uow.TicketRepository().UpdateStatusByNumbers(ctx, raffleID, numbers, status, externalPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	if len(tickets) > 0 {
		confirmed := make([]int, len(tickets))
		for i, t := range tickets {
			confirmed[i] = t.TicketNumber
		}
		uow.EventBus().Publish(events.TicketsConfirmedEvent{
			RaffleID:      raffleID,
			TicketNumbers: confirmed,
			NewStatus:     status,
			BuyerEmail:    tickets[0].BuyerEmail,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleID": raffleID,
		"numbers":  numbers,
		"status":   status,
		"matched":  len(tickets),
	}).Info("Ticket payment status updated")

	return tickets, nil
}

// CreateDonation records a donation and initiates its payment with the
// gateway. A gateway failure rolls the record back.
func (s *paymentService) CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, *gateway.Payment, error) {
	if donation.DonorName == "" {
		return nil, nil, models.NewValidationError("donor_name", "is required")
	}
	if !emailPattern.MatchString(donation.DonorEmail) {
		return nil, nil, models.NewValidationError("donor_email", "invalid email format")
	}
	if donation.Amount <= 0 {
		return nil, nil, models.NewValidationError("amount", "must be positive")
	}
	if donation.PaymentMethod == "" {
		return nil, nil, models.NewValidationError("payment_method", "is required")
	}
	if donation.DonationType == "" {
		donation.DonationType = models.DonationTypeSingle
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return nil, nil, fmt.Errorf("failed to create donation: %w", err)
	}

	var phone string
	if donation.DonorPhone != nil {
		phone = *donation.DonorPhone
	}
	payment, err := s.gateway.CreatePayment(ctx, gateway.PaymentRequest{
		Amount:      donation.Amount,
		Method:      donation.PaymentMethod,
		PayerName:   donation.DonorName,
		PayerEmail:  donation.DonorEmail,
		PayerPhone:  phone,
		Description: "Donation",
	})
	if err != nil {
		return nil, nil, models.NewDependencyError("payment gateway create payment", err)
	}

	updated, err := uow.DonationRepository().UpdateStatus(ctx, donation.ID, models.PaymentStatusPending, &payment.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment id: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"donationID": updated.ID,
		"amount":     updated.Amount,
		"paymentID":  payment.ID,
	}).Info("Donation created")

	return updated, payment, nil
}

// ConfirmDonation applies a payment transition to a single donation record,
// using the same permissive state machine as ticket confirmation.
func (s *paymentService) ConfirmDonation(ctx context.Context, donationID int64, status models.PaymentStatus, externalPaymentID *string) (*models.Donation, error) {
	if !validPaymentStatus(status) {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown payment status %q", status))
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, err := uow.DonationRepository().UpdateStatus(ctx, donationID, status, externalPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to update donation: %w", err)
	}
	if donation == nil {
		return nil, models.NewNotFoundError("donation", donationID)
	}

	uow.EventBus().Publish(events.DonationConfirmedEvent{
		DonationID: donation.ID,
		DonorName:  donation.DonorName,
		DonorEmail: donation.DonorEmail,
		Amount:     donation.Amount,
		NewStatus:  status,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return donation, nil
}

func (s *paymentService) ListDonations(ctx context.Context, status *models.PaymentStatus) ([]*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donations, err := uow.DonationRepository().List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return donations, nil
}
