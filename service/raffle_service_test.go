package service

import (
	"context"
	"testing"

	"raffler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRaffleService_Create(t *testing.T) {
	t.Parallel()

	factory, uow, raffleRepo, _, _ := setupServiceMocks()
	raffleRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Title == "Spring Fundraiser" && r.TotalNumbers == 100 && r.DrawDate != nil
	})).Return(nil)

	drawDate := "2026-12-24"
	service := NewRaffleService(factory)
	raffle, err := service.Create(context.Background(), CreateRaffleParams{
		Title:        "Spring Fundraiser",
		Description:  "Annual fundraiser",
		TicketPrice:  5.0,
		TotalNumbers: 100,
		DrawDate:     &drawDate,
	})

	require.NoError(t, err)
	require.NotNil(t, raffle)
	require.NotNil(t, raffle.DrawDate)
	assert.Equal(t, 2026, raffle.DrawDate.Year())
	uow.AssertCalled(t, "Commit")
}

func TestRaffleService_Create_Validation(t *testing.T) {
	t.Parallel()

	factory, _, _, _, _ := setupServiceMocks()
	service := NewRaffleService(factory)
	ctx := context.Background()

	badDate := "24/12/2026"
	tests := []struct {
		name   string
		params CreateRaffleParams
		field  string
	}{
		{"missing title", CreateRaffleParams{TicketPrice: 5, TotalNumbers: 10}, "title"},
		{"zero price", CreateRaffleParams{Title: "x", TotalNumbers: 10}, "ticket_price"},
		{"negative price", CreateRaffleParams{Title: "x", TicketPrice: -1, TotalNumbers: 10}, "ticket_price"},
		{"zero numbers", CreateRaffleParams{Title: "x", TicketPrice: 5}, "total_numbers"},
		{"bad draw date", CreateRaffleParams{Title: "x", TicketPrice: 5, TotalNumbers: 10, DrawDate: &badDate}, "draw_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.params)

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestRaffleService_Update_PartialFields(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()

	raffle := createActiveRaffle(1, 100, 5.0)
	raffle.Description = "original description"
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(raffle, nil)
	raffleRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newTitle := "Renamed Raffle"
	newPrice := 7.5
	service := NewRaffleService(factory)
	updated, err := service.Update(context.Background(), 1, models.RaffleUpdate{
		Title:       &newTitle,
		TicketPrice: &newPrice,
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed Raffle", updated.Title)
	assert.Equal(t, 7.5, updated.TicketPrice)

	// Fields not named in the update stay untouched
	assert.Equal(t, "original description", updated.Description)
	assert.Equal(t, 100, updated.TotalNumbers)
}

func TestRaffleService_Update_Validation(t *testing.T) {
	t.Parallel()

	factory, _, _, _, _ := setupServiceMocks()
	service := NewRaffleService(factory)

	empty := ""
	_, err := service.Update(context.Background(), 1, models.RaffleUpdate{Title: &empty})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)

	negative := -2.0
	_, err = service.Update(context.Background(), 1, models.RaffleUpdate{TicketPrice: &negative})
	require.ErrorAs(t, err, &validationErr)
}

func TestRaffleService_Cancel(t *testing.T) {
	t.Parallel()

	factory, uow, raffleRepo, ticketRepo, _ := setupServiceMocks()
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return(0, nil)
	raffleRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *models.Raffle) bool {
		return r.Status == models.RaffleStatusCancelled
	})).Return(nil)

	service := NewRaffleService(factory)
	err := service.Cancel(context.Background(), 1)

	require.NoError(t, err)
	uow.AssertCalled(t, "Commit")
	raffleRepo.AssertExpectations(t)
}

func TestRaffleService_Cancel_BlockedBySoldTickets(t *testing.T) {
	t.Parallel()

	factory, uow, raffleRepo, ticketRepo, _ := setupServiceMocks()
	raffleRepo.On("GetByIDForUpdate", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return(3, nil)

	service := NewRaffleService(factory)
	err := service.Cancel(context.Background(), 1)

	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	raffleRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit")
}

func TestRaffleService_Get(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, ticketRepo, _ := setupServiceMocks()
	raffleRepo.On("GetByID", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return(30, nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusPending).Return(10, nil)

	service := NewRaffleService(factory)
	detail, err := service.Get(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 30, detail.Sold)
	assert.Equal(t, 10, detail.Reserved)
	assert.Equal(t, 60, detail.Available)
}

func TestRaffleService_GetTicketStats(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, ticketRepo, _ := setupServiceMocks()
	raffleRepo.On("GetByID", mock.Anything, int64(1)).Return(createActiveRaffle(1, 100, 5.0), nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusCompleted).Return(40, nil)
	ticketRepo.On("CountByStatus", mock.Anything, int64(1), models.PaymentStatusPending).Return(5, nil)
	ticketRepo.On("Revenue", mock.Anything, int64(1)).Return(200.0, nil)

	service := NewRaffleService(factory)
	stats, err := service.GetTicketStats(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalNumbers)
	assert.Equal(t, 40, stats.SoldNumbers)
	assert.Equal(t, 5, stats.PendingNumbers)
	assert.Equal(t, 55, stats.AvailableNumbers)
	assert.Equal(t, 200.0, stats.TotalRevenue)
}

func TestRaffleService_Get_NotFound(t *testing.T) {
	t.Parallel()

	factory, _, raffleRepo, _, _ := setupServiceMocks()
	raffleRepo.On("GetByID", mock.Anything, int64(9)).Return(nil, nil)

	service := NewRaffleService(factory)
	_, err := service.Get(context.Background(), 9)

	var notFoundErr *models.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}
