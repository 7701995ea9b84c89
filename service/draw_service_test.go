package service

import (
	"context"
	"testing"
	"time"

	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func soldTicket(raffleID int64, number int, buyer string) *models.Ticket {
	email := buyer + "@example.com"
	return &models.Ticket{
		RaffleID:      raffleID,
		TicketNumber:  number,
		BuyerName:     buyer,
		BuyerEmail:    email,
		PaymentStatus: models.PaymentStatusCompleted,
	}
}

func TestDrawService_Draw_PicksFromSoldTickets(t *testing.T) {
	t.Parallel()

	factory, uow, raffleRepo, ticketRepo, _ := setupServiceMocks()

	raffle := createActiveRaffle(1, 100, 5.0)
	sold := []*models.Ticket{
		soldTicket(1, 3, "ana"),
		soldTicket(1, 7, "bruno"),
		soldTicket(1, 42, "carla"),
	}
	buyerByNumber := map[int]string{3: "ana", 7: "bruno", 42: "carla"}

	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(raffle, nil)
	ticketRepo.On("GetByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return(sold, nil)

	drawnAt := time.Now()
	raffleRepo.On("SetWinner", mock.Anything, int64(1),
		mock.MatchedBy(func(n int) bool { _, ok := buyerByNumber[n]; return ok }),
		mock.Anything, mock.Anything,
	).Return(&models.Raffle{
		ID:      1,
		Title:   raffle.Title,
		Status:  models.RaffleStatusCompleted,
		DrawnAt: &drawnAt,
	}, nil)

	service := NewDrawService(factory)
	result, err := service.Draw(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(1), result.RaffleID)

	// Winner must come from the paid-ticket set, name and email consistent
	buyer, ok := buyerByNumber[result.WinnerNumber]
	require.True(t, ok, "winner number %d is not a sold ticket", result.WinnerNumber)
	assert.Equal(t, buyer, result.WinnerName)
	assert.Equal(t, buyer+"@example.com", result.WinnerEmail)
	assert.True(t, drawnAt.Equal(result.DrawnAt))

	uow.AssertCalled(t, "Commit")
	raffleRepo.AssertExpectations(t)
}

func TestDrawService_Draw_NoSoldTickets(t *testing.T) {
	t.Parallel()

	factory, uow, raffleRepo, ticketRepo, _ := setupServiceMocks()
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)
	ticketRepo.On("GetByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return([]*models.Ticket{}, nil)

	service := NewDrawService(factory)
	result, err := service.Draw(context.Background(), 1)

	assert.Nil(t, result)
	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	raffleRepo.AssertNotCalled(t, "SetWinner", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit")
}

func TestDrawService_Draw_NotFound(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(nil, nil)

	service := NewDrawService(factory)
	_, err := service.Draw(context.Background(), 9)

	var notFoundErr *models.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestDrawService_Draw_AlreadyDrawn(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, ticketRepo, _ := setupServiceMocks()

	winnerNumber := 7
	drawnAt := time.Now()
	raffle := createActiveRaffle(1, 100, 5.0)
	raffle.Status = models.RaffleStatusCompleted
	raffle.WinnerNumber = &winnerNumber
	raffle.DrawnAt = &drawnAt
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(raffle, nil)

	service := NewDrawService(factory)
	_, err := service.Draw(context.Background(), 1)

	// A sealed raffle can never be drawn a second time
	var stateErr *models.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	ticketRepo.AssertNotCalled(t, "GetByStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawService_GetWinner(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()

	winnerNumber := 17
	winnerName := "Maria Silva"
	winnerEmail := "maria@example.com"
	drawnAt := time.Now()
	raffle := createActiveRaffle(1, 100, 5.0)
	raffle.Status = models.RaffleStatusCompleted
	raffle.WinnerNumber = &winnerNumber
	raffle.WinnerName = &winnerName
	raffle.WinnerEmail = &winnerEmail
	raffle.DrawnAt = &drawnAt
	raffleRepo.On("GetByID", mock.Anything, int64(1)).Return(raffle, nil)

	service := NewDrawService(factory)
	result, err := service.GetWinner(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 17, result.WinnerNumber)
	assert.Equal(t, "Maria Silva", result.WinnerName)
	assert.Equal(t, "maria@example.com", result.WinnerEmail)
}

func TestDrawService_GetWinner_NotDrawnYet(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()
	raffleRepo.On("GetByID", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)

	service := NewDrawService(factory)
	result, err := service.GetWinner(context.Background(), 1)

	// Not drawn yet is an answer, not an error
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDrawService_GetWinner_NotFound(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()
	raffleRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

	service := NewDrawService(factory)
	_, err := service.GetWinner(context.Background(), 9)

	var notFoundErr *models.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
