package service

import (
	"context"
	"fmt"
	"time"

	"raffler/models"

	log "github.com/sirupsen/logrus"
)

type raffleService struct {
	uowFactory UnitOfWorkFactory
}

// NewRaffleService creates a new raffle catalog service
func NewRaffleService(uowFactory UnitOfWorkFactory) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
	}
}

func (s *raffleService) Create(ctx context.Context, params CreateRaffleParams) (*models.Raffle, error) {
	if params.Title == "" {
		return nil, models.NewValidationError("title", "is required")
	}
	if params.TicketPrice <= 0 {
		return nil, models.NewValidationError("ticket_price", "must be positive")
	}
	if params.TotalNumbers <= 0 {
		return nil, models.NewValidationError("total_numbers", "must be positive")
	}

	var drawDate *time.Time
	if params.DrawDate != nil && *params.DrawDate != "" {
		parsed, err := time.Parse("2006-01-02", *params.DrawDate)
		if err != nil {
			return nil, models.NewValidationError("draw_date", "must be in YYYY-MM-DD format")
		}
		drawDate = &parsed
	}

	raffle := &models.Raffle{
		Title:        params.Title,
		Description:  params.Description,
		ImageURL:     params.ImageURL,
		TicketPrice:  params.TicketPrice,
		TotalNumbers: params.TotalNumbers,
		DrawDate:     drawDate,
		CreatedBy:    params.CreatedBy,
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.RaffleRepository().Create(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"raffleID":     raffle.ID,
		"title":        raffle.Title,
		"totalNumbers": raffle.TotalNumbers,
	}).Info("Raffle created")

	return raffle, nil
}

func (s *raffleService) Update(ctx context.Context, id int64, update models.RaffleUpdate) (*models.Raffle, error) {
	if update.Title != nil && *update.Title == "" {
		return nil, models.NewValidationError("title", "must not be empty")
	}
	if update.TicketPrice != nil && *update.TicketPrice <= 0 {
		return nil, models.NewValidationError("ticket_price", "must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", id)
	}

	// Whitelisted fields only; winner fields and total_numbers stay fixed
	if update.Title != nil {
		raffle.Title = *update.Title
	}
	if update.Description != nil {
		raffle.Description = *update.Description
	}
	if update.ImageURL != nil {
		raffle.ImageURL = *update.ImageURL
	}
	if update.TicketPrice != nil {
		raffle.TicketPrice = *update.TicketPrice
	}
	if update.DrawDate != nil {
		raffle.DrawDate = update.DrawDate
	}
	if update.Status != nil {
		raffle.Status = *update.Status
	}

	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return raffle, nil
}

func (s *raffleService) Cancel(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Row lock serializes cancel against concurrent reservation and draw
	raffle, err := uow.RaffleRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return models.NewNotFoundError("raffle", id)
	}

	sold, err := uow.TicketRepository().CountByStatus(ctx, id, models.PaymentStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to count sold tickets: %w", err)
	}
	if sold > 0 {
		return models.NewConflictError(fmt.Sprintf("cannot cancel raffle with %d sold tickets", sold))
	}

	raffle.Status = models.RaffleStatusCancelled
	if err := uow.RaffleRepository().Update(ctx, raffle); err != nil {
		return fmt.Errorf("failed to cancel raffle: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("raffleID", id).Info("Raffle cancelled")
	return nil
}

func (s *raffleService) Get(ctx context.Context, id int64) (*models.RaffleDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", id)
	}

	sold, err := uow.TicketRepository().CountByStatus(ctx, id, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	reserved, err := uow.TicketRepository().CountByStatus(ctx, id, models.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count reserved tickets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RaffleDetail{
		Raffle:    raffle,
		Sold:      sold,
		Reserved:  reserved,
		Available: raffle.TotalNumbers - sold - reserved,
	}, nil
}

func (s *raffleService) List(ctx context.Context, status *models.RaffleStatus) ([]*models.Raffle, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffles, err := uow.RaffleRepository().List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return raffles, nil
}

func (s *raffleService) GetTicketStats(ctx context.Context, id int64) (*models.RaffleTicketStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	raffle, err := uow.RaffleRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}
	if raffle == nil {
		return nil, models.NewNotFoundError("raffle", id)
	}

	sold, err := uow.TicketRepository().CountByStatus(ctx, id, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold tickets: %w", err)
	}
	pending, err := uow.TicketRepository().CountByStatus(ctx, id, models.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tickets: %w", err)
	}
	revenue, err := uow.TicketRepository().Revenue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RaffleTicketStats{
		TotalNumbers:     raffle.TotalNumbers,
		SoldNumbers:      sold,
		PendingNumbers:   pending,
		AvailableNumbers: raffle.TotalNumbers - sold - pending,
		TotalRevenue:     revenue,
	}, nil
}
