package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// RaffleRepository implements the RaffleRepository interface
type RaffleRepository struct {
	q queryable
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *database.DB) *RaffleRepository {
	return &RaffleRepository{q: db.Pool}
}

// newRaffleRepositoryWithTx creates a new raffle repository with a transaction
func newRaffleRepositoryWithTx(tx queryable) *RaffleRepository {
	return &RaffleRepository{q: tx}
}

const raffleColumns = `
	id, title, description, image_url, ticket_price, total_numbers,
	draw_date, status, winner_number, winner_name, winner_email,
	drawn_at, created_by, created_at, updated_at`

func scanRaffle(row pgx.Row) (*models.Raffle, error) {
	var raffle models.Raffle
	err := row.Scan(
		&raffle.ID,
		&raffle.Title,
		&raffle.Description,
		&raffle.ImageURL,
		&raffle.TicketPrice,
		&raffle.TotalNumbers,
		&raffle.DrawDate,
		&raffle.Status,
		&raffle.WinnerNumber,
		&raffle.WinnerName,
		&raffle.WinnerEmail,
		&raffle.DrawnAt,
		&raffle.CreatedBy,
		&raffle.CreatedAt,
		&raffle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

// Create creates a new raffle in active state
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	query := `
		INSERT INTO raffles (title, description, image_url, ticket_price, total_numbers, draw_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		raffle.Title,
		raffle.Description,
		raffle.ImageURL,
		raffle.TicketPrice,
		raffle.TotalNumbers,
		raffle.DrawDate,
		raffle.CreatedBy,
	).Scan(&raffle.ID, &raffle.Status, &raffle.CreatedAt, &raffle.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create raffle %q: %w", raffle.Title, err)
	}

	return nil
}

// GetByID retrieves a raffle by its ID, returning nil when absent
func (r *RaffleRepository) GetByID(ctx context.Context, id int64) (*models.Raffle, error) {
	query := `SELECT` + raffleColumns + ` FROM raffles WHERE id = $1`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle %d: %w", id, err)
	}

	return raffle, nil
}

// GetByIDForUpdate retrieves a raffle and takes its row lock for the duration
// of the surrounding transaction. Reservation, cancel and draw all serialize
// on this lock.
func (r *RaffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Raffle, error) {
	query := `SELECT` + raffleColumns + ` FROM raffles WHERE id = $1 FOR UPDATE`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock raffle %d: %w", id, err)
	}

	return raffle, nil
}

// Update persists the mutable fields of a raffle
func (r *RaffleRepository) Update(ctx context.Context, raffle *models.Raffle) error {
	query := `
		UPDATE raffles
		SET title = $1, description = $2, image_url = $3, ticket_price = $4,
		    draw_date = $5, status = $6, updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		raffle.Title,
		raffle.Description,
		raffle.ImageURL,
		raffle.TicketPrice,
		raffle.DrawDate,
		raffle.Status,
		raffle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update raffle %d: %w", raffle.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("raffle %d not found", raffle.ID)
	}

	return nil
}

// SetWinner seals a raffle with its draw outcome. The raffle moves to
// completed and the winner fields become immutable from here on.
func (r *RaffleRepository) SetWinner(ctx context.Context, id int64, winnerNumber int, winnerName, winnerEmail string) (*models.Raffle, error) {
	query := `
		UPDATE raffles
		SET status = $1, winner_number = $2, winner_name = $3, winner_email = $4,
		    drawn_at = NOW(), updated_at = NOW()
		WHERE id = $5
		RETURNING` + raffleColumns + `
	`

	raffle, err := scanRaffle(r.q.QueryRow(ctx, query,
		models.RaffleStatusCompleted, winnerNumber, winnerName, winnerEmail, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("raffle %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set winner for raffle %d: %w", id, err)
	}

	return raffle, nil
}

// List returns raffles ordered by creation time descending, optionally
// filtered by status
func (r *RaffleRepository) List(ctx context.Context, status *models.RaffleStatus) ([]*models.Raffle, error) {
	query := `SELECT` + raffleColumns + ` FROM raffles`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}
	defer rows.Close()

	var raffles []*models.Raffle
	for rows.Next() {
		raffle, err := scanRaffle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raffle: %w", err)
		}
		raffles = append(raffles, raffle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raffles: %w", err)
	}

	return raffles, nil
}
