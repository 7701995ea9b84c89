package service

import (
	"raffler/models"

	"github.com/stretchr/testify/mock"
)

// setupServiceMocks wires a unit of work over fresh repository mocks with
// permissive transaction expectations. Tests that care about commit or
// rollback behavior assert on the returned unit of work directly.
func setupServiceMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockRaffleRepository, *MockTicketRepository, *MockDonationRepository) {
	raffleRepo := new(MockRaffleRepository)
	ticketRepo := new(MockTicketRepository)
	donationRepo := new(MockDonationRepository)

	uow := new(MockUnitOfWork)
	uow.SetRepositories(raffleRepo, ticketRepo, donationRepo)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	factory := new(MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)

	return factory, uow, raffleRepo, ticketRepo, donationRepo
}

// createActiveRaffle builds an active raffle for service tests
func createActiveRaffle(id int64, totalNumbers int, price float64) *models.Raffle {
	return &models.Raffle{
		ID:           id,
		Title:        "Spring Fundraiser",
		TicketPrice:  price,
		TotalNumbers: totalNumbers,
		Status:       models.RaffleStatusActive,
	}
}
