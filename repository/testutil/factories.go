package testutil

import (
	"github.com/google/uuid"

	"raffler/models"
)

// CreateTestRaffle creates a raffle with sensible defaults
func CreateTestRaffle(title string, totalNumbers int) *models.Raffle {
	return &models.Raffle{
		Title:        title,
		Description:  "Test raffle for " + title,
		TicketPrice:  5.0,
		TotalNumbers: totalNumbers,
		Status:       models.RaffleStatusActive,
	}
}

// CreateTestRaffleWithPrice creates a raffle with a specific ticket price
func CreateTestRaffleWithPrice(title string, totalNumbers int, price float64) *models.Raffle {
	raffle := CreateTestRaffle(title, totalNumbers)
	raffle.TicketPrice = price
	return raffle
}

// CreateTestTickets creates pending tickets for the given numbers, all sharing
// one purchase id
func CreateTestTickets(raffleID int64, numbers []int, buyerName, buyerEmail string) []*models.Ticket {
	purchaseID := uuid.New()
	tickets := make([]*models.Ticket, 0, len(numbers))
	for _, n := range numbers {
		tickets = append(tickets, &models.Ticket{
			RaffleID:      raffleID,
			TicketNumber:  n,
			BuyerName:     buyerName,
			BuyerEmail:    buyerEmail,
			PaymentStatus: models.PaymentStatusPending,
			PurchaseID:    &purchaseID,
		})
	}
	return tickets
}

// CreateTestTicketsWithStatus creates tickets in a specific payment status
func CreateTestTicketsWithStatus(raffleID int64, numbers []int, status models.PaymentStatus) []*models.Ticket {
	tickets := CreateTestTickets(raffleID, numbers, "Test Buyer", "buyer@example.com")
	for _, ticket := range tickets {
		ticket.PaymentStatus = status
	}
	return tickets
}

// CreateTestDonation creates a single donation with defaults
func CreateTestDonation(amount float64) *models.Donation {
	return &models.Donation{
		DonorName:     "Test Donor",
		DonorEmail:    "donor@example.com",
		Amount:        amount,
		DonationType:  models.DonationTypeSingle,
		PaymentMethod: "pix",
		PaymentStatus: models.PaymentStatusPending,
	}
}
