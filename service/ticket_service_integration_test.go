package service_test

import (
	"context"
	"sync"
	"testing"

	"raffler/events"
	"raffler/gateway"
	"raffler/models"
	"raffler/repository"
	"raffler/repository/testutil"
	"raffler/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketReservation_Integration(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	gw := gateway.NewMock(0)
	defer gw.Close()

	ticketService := service.NewTicketService(uowFactory, gw)
	paymentService := service.NewPaymentService(uowFactory, gw)
	drawService := service.NewDrawService(uowFactory)

	raffleRepo := repository.NewRaffleRepository(testDB.DB)
	raffle := testutil.CreateTestRaffle("Integration Raffle", 20)
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	t.Run("reservation survives to confirmation and draw", func(t *testing.T) {
		batch, payment, err := ticketService.ReserveTickets(ctx, service.ReserveTicketsParams{
			RaffleID:      raffle.ID,
			BuyerName:     "Maria Silva",
			BuyerEmail:    "maria@example.com",
			Numbers:       []int{3, 7},
			PaymentMethod: gateway.MethodPix,
		})
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.NotEmpty(t, payment.PixCode)

		confirmed, err := paymentService.ConfirmTickets(ctx, raffle.ID, batch.TicketNumbers, models.PaymentStatusCompleted, &payment.ID)
		require.NoError(t, err)
		require.Len(t, confirmed, 2)
		for _, ticket := range confirmed {
			assert.Equal(t, models.PaymentStatusCompleted, ticket.PaymentStatus)
			require.NotNil(t, ticket.PurchasedAt)
		}

		result, err := drawService.Draw(ctx, raffle.ID)
		require.NoError(t, err)
		assert.Contains(t, []int{3, 7}, result.WinnerNumber)
		assert.Equal(t, "Maria Silva", result.WinnerName)

		// The raffle is sealed, a second draw must fail
		_, err = drawService.Draw(ctx, raffle.ID)
		var stateErr *models.InvalidStateError
		require.ErrorAs(t, err, &stateErr)
	})
}

func TestConcurrentReservations_Integration(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, eventBus)
	gw := gateway.NewMock(0)
	defer gw.Close()

	ticketService := service.NewTicketService(uowFactory, gw)

	raffleRepo := repository.NewRaffleRepository(testDB.DB)
	raffle := testutil.CreateTestRaffle("Contended Raffle", 50)
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	// Every worker wants number 13; exactly one may get it
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = ticketService.ReserveTickets(ctx, service.ReserveTicketsParams{
				RaffleID:      raffle.ID,
				BuyerName:     "Concurrent Buyer",
				BuyerEmail:    "buyer@example.com",
				Numbers:       []int{13},
				PaymentMethod: gateway.MethodPix,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var conflictErr *models.ConflictError
		require.ErrorAs(t, err, &conflictErr, "losers must fail with a conflict, got: %v", err)
	}
	require.Equal(t, 1, succeeded, "exactly one reservation of a contested number may win")

	// Exactly one pending ticket holds the number
	ticketRepo := repository.NewTicketRepository(testDB.DB)
	taken, err := ticketRepo.GetActiveNumbers(ctx, raffle.ID, []int{13})
	require.NoError(t, err)
	assert.Equal(t, []int{13}, taken)

	tickets, err := ticketRepo.GetByRaffleAndNumbers(ctx, raffle.ID, []int{13})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, models.PaymentStatusPending, tickets[0].PaymentStatus)
}
