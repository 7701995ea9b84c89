package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TicketRepository implements the TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

const ticketColumns = `
	id, raffle_id, ticket_number, buyer_name, buyer_email, buyer_phone,
	payment_status, payment_id, purchase_id, purchased_at, created_at`

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var ticket models.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.RaffleID,
		&ticket.TicketNumber,
		&ticket.BuyerName,
		&ticket.BuyerEmail,
		&ticket.BuyerPhone,
		&ticket.PaymentStatus,
		&ticket.PaymentID,
		&ticket.PurchaseID,
		&ticket.PurchasedAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// pgNumbers converts ticket numbers for use with = ANY($n::int[])
func pgNumbers(numbers []int) []int32 {
	out := make([]int32, len(numbers))
	for i, n := range numbers {
		out[i] = int32(n)
	}
	return out
}

// CreateBatch inserts one ticket per selected number in a single batch
// insert. The partial unique index on (raffle_id, ticket_number) rejects the
// whole batch if any number is already held by a non-cancelled ticket.
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	query := `
		INSERT INTO raffle_tickets (raffle_id, ticket_number, buyer_name, buyer_email, buyer_phone, payment_status, purchase_id)
		VALUES `

	values := make([]any, 0, len(tickets)*7)
	for i, ticket := range tickets {
		if i > 0 {
			query += ", "
		}
		paramOffset := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			paramOffset+1, paramOffset+2, paramOffset+3, paramOffset+4,
			paramOffset+5, paramOffset+6, paramOffset+7)
		values = append(values, ticket.RaffleID, ticket.TicketNumber, ticket.BuyerName,
			ticket.BuyerEmail, ticket.BuyerPhone, ticket.PaymentStatus, ticket.PurchaseID)
	}
	query += " RETURNING id, created_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("ticket numbers already reserved")
		}
		return fmt.Errorf("failed to batch create raffle tickets: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&tickets[i].ID, &tickets[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan ticket result: %w", err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("ticket numbers already reserved")
		}
		return fmt.Errorf("failed to batch create raffle tickets: %w", err)
	}

	return nil
}

// isUniqueViolation reports a PostgreSQL unique constraint error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetActiveNumbers returns which of the given numbers are currently held by a
// pending or completed ticket in the raffle
func (r *TicketRepository) GetActiveNumbers(ctx context.Context, raffleID int64, numbers []int) ([]int, error) {
	query := `
		SELECT ticket_number FROM raffle_tickets
		WHERE raffle_id = $1 AND ticket_number = ANY($2::int[]) AND payment_status <> $3
		ORDER BY ticket_number ASC
	`

	rows, err := r.q.Query(ctx, query, raffleID, pgNumbers(numbers), models.PaymentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to check reserved numbers for raffle %d: %w", raffleID, err)
	}
	defer rows.Close()

	var taken []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan ticket number: %w", err)
		}
		taken = append(taken, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reserved numbers: %w", err)
	}

	return taken, nil
}

// GetByRaffle returns all tickets for a raffle regardless of state
func (r *TicketRepository) GetByRaffle(ctx context.Context, raffleID int64) ([]*models.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM raffle_tickets
		WHERE raffle_id = $1
		ORDER BY ticket_number ASC`

	return r.queryTickets(ctx, query, raffleID)
}

// GetByRaffleAndNumbers returns the tickets matching the given numbers in a
// raffle, regardless of their payment state
func (r *TicketRepository) GetByRaffleAndNumbers(ctx context.Context, raffleID int64, numbers []int) ([]*models.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM raffle_tickets
		WHERE raffle_id = $1 AND ticket_number = ANY($2::int[])
		ORDER BY ticket_number ASC`

	return r.queryTickets(ctx, query, raffleID, pgNumbers(numbers))
}

// GetByStatus returns all tickets in a raffle with the given payment status
func (r *TicketRepository) GetByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]*models.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM raffle_tickets
		WHERE raffle_id = $1 AND payment_status = $2
		ORDER BY ticket_number ASC`

	return r.queryTickets(ctx, query, raffleID, status)
}

// GetByPurchaseID returns all tickets bought together in one checkout
func (r *TicketRepository) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) ([]*models.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM raffle_tickets
		WHERE purchase_id = $1
		ORDER BY ticket_number ASC`

	return r.queryTickets(ctx, query, purchaseID)
}

// NumbersByStatus returns the ticket numbers in a raffle with the given status
func (r *TicketRepository) NumbersByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) ([]int, error) {
	query := `
		SELECT ticket_number FROM raffle_tickets
		WHERE raffle_id = $1 AND payment_status = $2
		ORDER BY ticket_number ASC
	`

	rows, err := r.q.Query(ctx, query, raffleID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s numbers for raffle %d: %w", status, raffleID, err)
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan ticket number: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket numbers: %w", err)
	}

	return numbers, nil
}

// CountByStatus counts the tickets in a raffle with the given payment status
func (r *TicketRepository) CountByStatus(ctx context.Context, raffleID int64, status models.PaymentStatus) (int, error) {
	query := `SELECT COUNT(*) FROM raffle_tickets WHERE raffle_id = $1 AND payment_status = $2`

	var count int
	err := r.q.QueryRow(ctx, query, raffleID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s tickets for raffle %d: %w", status, raffleID, err)
	}

	return count, nil
}

// UpdateStatusByNumbers moves the matching tickets to the given payment
// status. A completed transition stamps purchased_at once and keeps the
// original stamp on re-confirmation. A provided payment id overwrites the
// stored one; nil keeps it.
func (r *TicketRepository) UpdateStatusByNumbers(ctx context.Context, raffleID int64, numbers []int, status models.PaymentStatus, paymentID *string) ([]*models.Ticket, error) {
	query := `
		UPDATE raffle_tickets
		SET payment_status = $3,
		    payment_id = COALESCE($4, payment_id),
		    purchased_at = CASE WHEN $3 = 'completed' THEN COALESCE(purchased_at, NOW()) ELSE purchased_at END
		WHERE raffle_id = $1 AND ticket_number = ANY($2::int[])
		RETURNING` + ticketColumns

	return r.queryTickets(ctx, query, raffleID, pgNumbers(numbers), status, paymentID)
}

// SetPaymentIDByPurchase records the external payment id on every ticket of a
// purchase batch
func (r *TicketRepository) SetPaymentIDByPurchase(ctx context.Context, purchaseID uuid.UUID, paymentID string) error {
	query := `UPDATE raffle_tickets SET payment_id = $2 WHERE purchase_id = $1`

	if _, err := r.q.Exec(ctx, query, purchaseID, paymentID); err != nil {
		return fmt.Errorf("failed to set payment id for purchase %s: %w", purchaseID, err)
	}

	return nil
}

// Revenue sums the confirmed sales of a raffle at its ticket price
func (r *TicketRepository) Revenue(ctx context.Context, raffleID int64) (float64, error) {
	query := `
		SELECT COALESCE(COUNT(t.id) * r.ticket_price, 0)
		FROM raffles r
		LEFT JOIN raffle_tickets t ON t.raffle_id = r.id AND t.payment_status = $2
		WHERE r.id = $1
		GROUP BY r.ticket_price
	`

	var revenue float64
	err := r.q.QueryRow(ctx, query, raffleID, models.PaymentStatusCompleted).Scan(&revenue)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to compute revenue for raffle %d: %w", raffleID, err)
	}

	return revenue, nil
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*models.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raffle tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raffle ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raffle tickets: %w", err)
	}

	return tickets, nil
}
