package service

import (
	"context"

	"raffler/events"
	"raffler/gateway"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRaffleRepository is a mock implementation of RaffleRepository
type MockRaffleRepository struct {
	mock.Mock
}

func (m *MockRaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	args := m.Called(ctx, raffle)
	return args.Error(0)
}

func (m *MockRaffleRepository) SetWinner(ctx context.Context, id int64, winnerNumber int, winnerName, winnerEmail string) (*models.Raffle, error) {
	args := m.Called(ctx, id, winnerNumber, winnerName, winnerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Raffle), args.Error(1)
}

func (m *MockRaffleRepository) List(ctx context.Context, status *models.RaffleStatus) ([]*models.Raffle, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Raffle), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*models.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetActiveNumbers(ctx context.Context, raffleID int64, numbers []int) ([]int, error) {
	args := m.Called(ctx, raffleID, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTicketRepository) GetByRaffle(ctx context.Context, raffleID int64) ([]*models.Ticket, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByRaffleAndNumbers(ctx context.Context, raffleID int64, numbers []int) ([]*models.Ticket, error) {
	args := m.Called(ctx, raffleID, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]*models.Ticket, error) {
	args := m.Called(ctx, raffleID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) ([]*models.Ticket, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) NumbersByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]int, error) {
	args := m.Called(ctx, raffleID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTicketRepository) CountByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) (int, error) {
	args := m.Called(ctx, raffleID, status)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) UpdateStatusByNumbers(ctx context.Context, raffleID int64, numbers []int, status models.PaymentStatus, paymentID *string) ([]*models.Ticket, error) {
	args := m.Called(ctx, raffleID, numbers, status, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) SetPaymentIDByPurchase(ctx context.Context, purchaseID uuid.UUID, paymentID string) error {
	args := m.Called(ctx, purchaseID, paymentID)
	return args.Error(0)
}

func (m *MockTicketRepository) Revenue(ctx context.Context, raffleID int64) (float64, error) {
	args := m.Called(ctx, raffleID)
	return args.Get(0).(float64), args.Error(1)
}

// MockDonationRepository is a mock implementation of DonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus, paymentID *string) (*models.Donation, error) {
	args := m.Called(ctx, id, status, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) List(ctx context.Context, status *models.PaymentStatus) ([]*models.Donation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

// MockPaymentGateway is a mock implementation of gateway.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

func (m *MockPaymentGateway) GetStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(models.PaymentStatus), args.Error(1)
}

func (m *MockPaymentGateway) CancelPayment(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// attached with SetRepositories so tests configure them once.
type MockUnitOfWork struct {
	mock.Mock
	raffleRepo   RaffleRepository
	ticketRepo   TicketRepository
	donationRepo DonationRepository
	eventBus     EventPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(raffleRepo RaffleRepository, ticketRepo TicketRepository, donationRepo DonationRepository) {
	m.raffleRepo = raffleRepo
	m.ticketRepo = ticketRepo
	m.donationRepo = donationRepo
	m.eventBus = &NoopEventPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RaffleRepository() RaffleRepository {
	return m.raffleRepo
}

func (m *MockUnitOfWork) TicketRepository() TicketRepository {
	return m.ticketRepo
}

func (m *MockUnitOfWork) DonationRepository() DonationRepository {
	return m.donationRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// NoopEventPublisher swallows events in unit tests
type NoopEventPublisher struct{}

func (p *NoopEventPublisher) Publish(event events.Event) {}
