package repository

import (
	"context"
	"testing"

	"raffler/models"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRaffle(t *testing.T, testDB *testutil.TestDatabase, totalNumbers int) *models.Raffle {
	raffleRepo := NewRaffleRepository(testDB.DB)
	raffle := testutil.CreateTestRaffle("Test Raffle "+t.Name(), totalNumbers)
	err := raffleRepo.Create(context.Background(), raffle)
	require.NoError(t, err)
	require.NotEqual(t, int64(0), raffle.ID)
	require.Equal(t, models.RaffleStatusActive, raffle.Status)
	return raffle
}

func TestTicketRepository_CreateBatch(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{3, 7, 42}, "Maria Silva", "maria@example.com")

	err := ticketRepo.CreateBatch(ctx, tickets)
	require.NoError(t, err)

	for _, ticket := range tickets {
		assert.NotEqual(t, int64(0), ticket.ID)
		assert.False(t, ticket.CreatedAt.IsZero())
	}

	// All tickets share the purchase id and land in pending
	saved, err := ticketRepo.GetByPurchaseID(ctx, *tickets[0].PurchaseID)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for _, ticket := range saved {
		assert.Equal(t, models.PaymentStatusPending, ticket.PaymentStatus)
		assert.Nil(t, ticket.PurchasedAt)
		assert.Nil(t, ticket.PaymentID)
	}
	assert.Equal(t, []int{3, 7, 42}, numbersOf(saved))
}

func TestTicketRepository_CreateBatch_UniqueViolation(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	first := testutil.CreateTestTickets(raffle.ID, []int{5, 6}, "First Buyer", "first@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, first))

	// Overlapping batch hits the partial unique index and fails whole
	second := testutil.CreateTestTickets(raffle.ID, []int{6, 7}, "Second Buyer", "second@example.com")
	err := ticketRepo.CreateBatch(ctx, second)
	require.Error(t, err)

	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// Nothing from the failed batch persisted
	saved, err := ticketRepo.GetByRaffle(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, numbersOf(saved))
}

func TestTicketRepository_CancelledNumberIsReusable(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 50)

	ticketRepo := NewTicketRepository(testDB.DB)
	first := testutil.CreateTestTickets(raffle.ID, []int{10}, "First Buyer", "first@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, first))

	_, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{10}, models.PaymentStatusCancelled, nil)
	require.NoError(t, err)

	// The cancelled ticket no longer holds its number
	taken, err := ticketRepo.GetActiveNumbers(ctx, raffle.ID, []int{10})
	require.NoError(t, err)
	assert.Empty(t, taken)

	second := testutil.CreateTestTickets(raffle.ID, []int{10}, "Second Buyer", "second@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, second))

	// Both records remain, only one is active
	all, err := ticketRepo.GetByRaffleAndNumbers(ctx, raffle.ID, []int{10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	taken, err = ticketRepo.GetActiveNumbers(ctx, raffle.ID, []int{10})
	require.NoError(t, err)
	assert.Equal(t, []int{10}, taken)
}

func TestTicketRepository_GetActiveNumbers(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{2, 4, 8}, "Buyer", "buyer@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, tickets))

	_, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{4}, models.PaymentStatusCompleted, nil)
	require.NoError(t, err)

	// Pending and completed both count, numbers never reserved do not
	taken, err := ticketRepo.GetActiveNumbers(ctx, raffle.ID, []int{2, 3, 4, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 8}, taken)
}

func TestTicketRepository_UpdateStatusByNumbers_Confirm(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{1, 2, 3}, "Buyer", "buyer@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, tickets))

	paymentID := "pay_abc123"
	updated, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{1, 3}, models.PaymentStatusCompleted, &paymentID)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	for _, ticket := range updated {
		assert.Equal(t, models.PaymentStatusCompleted, ticket.PaymentStatus)
		require.NotNil(t, ticket.PurchasedAt)
		require.NotNil(t, ticket.PaymentID)
		assert.Equal(t, paymentID, *ticket.PaymentID)
	}

	// Untouched number stays pending
	pending, err := ticketRepo.GetByStatus(ctx, raffle.ID, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, numbersOf(pending))
}

func TestTicketRepository_UpdateStatusByNumbers_PurchasedAtIsStable(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{9}, "Buyer", "buyer@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, tickets))

	first, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{9}, models.PaymentStatusCompleted, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NotNil(t, first[0].PurchasedAt)
	firstStamp := *first[0].PurchasedAt

	// Re-confirming keeps the original purchase timestamp
	second, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{9}, models.PaymentStatusCompleted, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.NotNil(t, second[0].PurchasedAt)
	assert.True(t, firstStamp.Equal(*second[0].PurchasedAt))

	// Cancelling does not clear it either
	cancelled, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{9}, models.PaymentStatusCancelled, nil)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.NotNil(t, cancelled[0].PurchasedAt)
}

func TestTicketRepository_UpdateStatusByNumbers_KeepsPaymentIDWhenNil(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 100)

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{12}, "Buyer", "buyer@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, tickets))

	require.NoError(t, ticketRepo.SetPaymentIDByPurchase(ctx, *tickets[0].PurchaseID, "pay_original"))

	updated, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{12}, models.PaymentStatusCompleted, nil)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.NotNil(t, updated[0].PaymentID)
	assert.Equal(t, "pay_original", *updated[0].PaymentID)
}

func TestTicketRepository_CountAndRevenue(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	raffleRepo := NewRaffleRepository(testDB.DB)
	raffle := testutil.CreateTestRaffleWithPrice("Revenue Raffle", 100, 2.5)
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	ticketRepo := NewTicketRepository(testDB.DB)
	tickets := testutil.CreateTestTickets(raffle.ID, []int{1, 2, 3, 4}, "Buyer", "buyer@example.com")
	require.NoError(t, ticketRepo.CreateBatch(ctx, tickets))

	_, err := ticketRepo.UpdateStatusByNumbers(ctx, raffle.ID, []int{1, 2, 3}, models.PaymentStatusCompleted, nil)
	require.NoError(t, err)

	sold, err := ticketRepo.CountByStatus(ctx, raffle.ID, models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 3, sold)

	pending, err := ticketRepo.CountByStatus(ctx, raffle.ID, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	revenue, err := ticketRepo.Revenue(ctx, raffle.ID)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, revenue, 0.001)
}

func TestTicketRepository_Revenue_NoSales(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	raffle := setupRaffle(t, testDB, 10)

	ticketRepo := NewTicketRepository(testDB.DB)
	revenue, err := ticketRepo.Revenue(ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, revenue)
}

func numbersOf(tickets []*models.Ticket) []int {
	numbers := make([]int, 0, len(tickets))
	for _, t := range tickets {
		numbers = append(numbers, t.TicketNumber)
	}
	return numbers
}
