package service

import (
	"context"
	"fmt"
	"math/rand"

	"raffler/events"
	"raffler/models"

	log "github.com/sirupsen/logrus"
)

type drawService struct {
	uowFactory UnitOfWorkFactory
}

// NewDrawService creates a new draw engine service
func NewDrawService(uowFactory UnitOfWorkFactory) DrawService {
	return &drawService{
		uowFactory: uowFactory,
	}
}

// Draw selects one completed ticket uniformly at random and seals the raffle.
// The raffle row lock makes the draw atomic against concurrent cancel or a
// second draw.
func (s *drawService) Draw(ctx context.Context, raffleID int64) (*models.DrawResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", raffleID)
	}
	if !raffle.IsActive() {
		return nil, models.NewInvalidStateError(fmt.Sprintf("raffle %d is not active for drawing", raffleID))
	}

	soldTickets, err := uow.TicketRepository().GetByStatus(ctx, raffleID, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to get sold tickets: %w", err)
	}
	if len(soldTickets) == 0 {
		return nil, models.NewConflictError("no tickets sold for this raffle")
	}

	// Uniform over the paid-ticket set; the eligible set is already public
	// before the draw, so an unpredictable source is not required
	winner := soldTickets[rand.Intn(len(soldTickets))]

	sealed, err := uow.RaffleRepository().SetWinner(ctx, raffleID, winner.TicketNumber, winner.BuyerName, winner.BuyerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to seal raffle: %w", err)
	}

	uow.EventBus().Publish(events.RaffleDrawnEvent{
		RaffleID:     raffleID,
		RaffleTitle:  sealed.Title,
		WinnerNumber: winner.TicketNumber,
		WinnerName:   winner.BuyerName,
		WinnerEmail:  winner.BuyerEmail,
		DrawnAt:      *sealed.DrawnAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleID":     raffleID,
		"winnerNumber": winner.TicketNumber,
		"ticketCount":  len(soldTickets),
	}).Info("Raffle drawn")

	return &models.DrawResult{
		RaffleID:     raffleID,
		WinnerNumber: winner.TicketNumber,
		WinnerName:   winner.BuyerName,
		WinnerEmail:  winner.BuyerEmail,
		DrawnAt:      *sealed.DrawnAt,
	}, nil
}

// GetWinner returns the draw outcome for a raffle, or nil when the raffle has
// not been drawn yet. Not-drawn-yet is an answer, not an error.
func (s *drawService) GetWinner(ctx context.Context, raffleID int64) (*models.DrawResult, error) {
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

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if !raffle.IsDrawn() {
		return nil, nil
	}

	return &models.DrawResult{
		RaffleID:     raffleID,
		WinnerNumber: *raffle.WinnerNumber,
		WinnerName:   *raffle.WinnerName,
		WinnerEmail:  *raffle.WinnerEmail,
		DrawnAt:      *raffle.DrawnAt,
	}, nil
}
