package service

import (
	"context"

	"raffler/events"
	"raffler/gateway"
	"raffler/models"

	"github.com/google/uuid"
)

// RaffleRepository defines the interface for raffle data access
type RaffleRepository interface {
	// Create creates a new raffle in active state
	Create(ctx context.Context, raffle *models.Raffle) error

	// GetByID retrieves a raffle by its ID, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.Raffle, error)

	// GetByIDForUpdate retrieves a raffle and takes its row lock for the
	// duration of the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error)

	// Update persists the mutable fields of a raffle
	Update(ctx context.Context, raffle *models.Raffle) error

	// SetWinner seals a raffle with its draw outcome
	SetWinner(ctx context.Context, id int64, winnerNumber int, winnerName, winnerEmail string) (*models.Raffle, error)

	// List returns raffles ordered by creation time descending, optionally filtered by status
	List(ctx context.Context, status *models.RaffleStatus) ([]*models.Raffle, error)
}

// TicketRepository defines the interface for raffle ticket data access
type TicketRepository interface {
	// CreateBatch inserts one ticket per selected number in a single batch insert
	CreateBatch(ctx context.Context, tickets []*models.Ticket) error

	// GetActiveNumbers returns which of the given numbers are held by a
	// pending or completed ticket
	GetActiveNumbers(ctx context.Context, raffleID int64, numbers []int) ([]int, error)

	// GetByRaffle returns all tickets for a raffle regardless of state
	GetByRaffle(ctx context.Context, raffleID int64) ([]*models.Ticket, error)

	// GetByRaffleAndNumbers returns the tickets matching the given numbers regardless of state
	GetByRaffleAndNumbers(ctx context.Context, raffleID int64, numbers []int) ([]*models.Ticket, error)

	// GetByStatus returns all tickets in a raffle with the given payment status
	GetByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]*models.Ticket, error)

	// GetByPurchaseID returns all tickets bought together in one checkout
	GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) ([]*models.Ticket, error)

	// NumbersByStatus returns the ticket numbers in a raffle with the given status
	NumbersByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]int, error)

	// CountByStatus counts the tickets in a raffle with the given payment status
	CountByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) (int, error)

	// UpdateStatusByNumbers moves the matching tickets to the given payment status
	UpdateStatusByNumbers(ctx context.Context, raffleID int64, numbers []int, status models.PaymentStatus, paymentID *string) ([]*models.Ticket, error)

	// SetPaymentIDByPurchase records the external payment id on a purchase batch
	SetPaymentIDByPurchase(ctx context.Context, purchaseID uuid.UUID, paymentID string) error

	// Revenue sums the confirmed sales of a raffle at its ticket price
	Revenue(ctx context.Context, raffleID int64) (float64, error)
}

// DonationRepository defines the interface for donation data access
type DonationRepository interface {
	// Create creates a new donation record in pending state
	Create(ctx context.Context, donation *models.Donation) error

	// GetByID retrieves a donation by its ID, returning nil when absent
	GetByID(ctx context.Context, id int64) (*models.Donation, error)

	// UpdateStatus applies a payment lifecycle transition to one donation
	UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus, paymentID *string) (*models.Donation, error)

	// List returns donations ordered by creation time descending
	List(ctx context.Context, status *models.PaymentStatus) ([]*models.Donation, error)
}

// CreateRaffleParams carries the administrator input for a new raffle
type CreateRaffleParams struct {
	Title        string
	Description  string
	ImageURL     string
	TicketPrice  float64
	TotalNumbers int
	DrawDate     *string // YYYY-MM-DD, informational only
	CreatedBy    *int64
}

// RaffleService defines the interface for raffle catalog operations
type RaffleService interface {
	// Create creates a new raffle in active state
	Create(ctx context.Context, params CreateRaffleParams) (*models.Raffle, error)

	// Update applies whitelisted partial fields to a raffle
	Update(ctx context.Context, id int64, update models.RaffleUpdate) (*models.Raffle, error)

	// Cancel moves a raffle to cancelled unless it has confirmed sales
	Cancel(ctx context.Context, id int64) error

	// Get returns a raffle with live sold/reserved/available counts
	Get(ctx context.Context, id int64) (*models.RaffleDetail, error)

	// List returns raffles ordered by creation time descending
	List(ctx context.Context, status *models.RaffleStatus) ([]*models.Raffle, error)

	// GetTicketStats returns the sales summary for a raffle
	GetTicketStats(ctx context.Context, id int64) (*models.RaffleTicketStats, error)
}

// ReserveTicketsParams carries one checkout action over a number selection
type ReserveTicketsParams struct {
	RaffleID      int64
	BuyerName     string
	BuyerEmail    string
	BuyerPhone    *string
	Numbers       []int
	PaymentMethod string
}

// TicketService defines the interface for the ticket ledger
type TicketService interface {
	// ReserveTickets atomically reserves a selection of numbers for a buyer
	// and registers the payment with the gateway. All-or-nothing: a conflict
	// on any number, or a gateway failure, reserves none of them.
	ReserveTickets(ctx context.Context, params ReserveTicketsParams) (*models.PurchaseBatch, *gateway.Payment, error)

	// GetNumbers returns the live sold/reserved/available partition of the range
	GetNumbers(ctx context.Context, raffleID int64) (*models.NumberAvailability, error)
}

// PaymentService defines the interface for payment correlation
type PaymentService interface {
	// ConfirmTickets transitions the tickets matching the given numbers.
	// Idempotent: re-confirming a completed ticket is a no-op.
	ConfirmTickets(ctx context.Context, raffleID int64, numbers []int, status models.PaymentStatus, externalPaymentID *string) ([]*models.Ticket, error)

	// CreateDonation records a donation and initiates its payment
	CreateDonation(ctx context.Context, donation *models.Donation) (*models.Donation, *gateway.Payment, error)

	// ConfirmDonation applies a payment transition to a single donation
	ConfirmDonation(ctx context.Context, donationID int64, status models.PaymentStatus, externalPaymentID *string) (*models.Donation, error)

	// ListDonations returns donations, optionally filtered by payment status
	ListDonations(ctx context.Context, status *models.PaymentStatus) ([]*models.Donation, error)
}

// DrawService defines the interface for the draw engine
type DrawService interface {
	// Draw selects one completed ticket uniformly at random and seals the raffle
	Draw(ctx context.Context, raffleID int64) (*models.DrawResult, error)

	// GetWinner returns the draw outcome, or nil when the raffle has not been
	// drawn yet (not an error)
	GetWinner(ctx context.Context, raffleID int64) (*models.DrawResult, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	RaffleRepository() RaffleRepository
	TicketRepository() TicketRepository
	DonationRepository() DonationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
