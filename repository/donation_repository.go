package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"

	"github.com/jackc/pgx/v5"
)

// DonationRepository implements the DonationRepository interface
type DonationRepository struct {
	q queryable
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *database.DB) *DonationRepository {
	return &DonationRepository{q: db.Pool}
}

// newDonationRepositoryWithTx creates a new donation repository with a transaction
func newDonationRepositoryWithTx(tx queryable) *DonationRepository {
	return &DonationRepository{q: tx}
}

const donationColumns = `
	id, donor_name, donor_email, donor_phone, amount, donation_type,
	payment_method, payment_status, payment_id, created_at, updated_at`

func scanDonation(row pgx.Row) (*models.Donation, error) {
	var donation models.Donation
	err := row.Scan(
		&donation.ID,
		&donation.DonorName,
		&donation.DonorEmail,
		&donation.DonorPhone,
		&donation.Amount,
		&donation.DonationType,
		&donation.PaymentMethod,
		&donation.PaymentStatus,
		&donation.PaymentID,
		&donation.CreatedAt,
		&donation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// Create creates a new donation record in pending state
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (donor_name, donor_email, donor_phone, amount, donation_type, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, payment_status, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		donation.DonorName,
		donation.DonorEmail,
		donation.DonorPhone,
		donation.Amount,
		donation.DonationType,
		donation.PaymentMethod,
	).Scan(&donation.ID, &donation.PaymentStatus, &donation.CreatedAt, &donation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create donation from %q: %w", donation.DonorName, err)
	}

	return nil
}

// GetByID retrieves a donation by its ID, returning nil when absent
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	query := `SELECT` + donationColumns + ` FROM donations WHERE id = $1`

	donation, err := scanDonation(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donation %d: %w", id, err)
	}

	return donation, nil
}

// UpdateStatus applies a payment lifecycle transition to one donation.
// Transitions are permissive to mirror gateway callbacks; a provided payment
// id overwrites the stored one, nil keeps it.
func (r *DonationRepository) UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus, paymentID *string) (*models.Donation, error) {
	query := `
		UPDATE donations
		SET payment_status = $2, payment_id = COALESCE($3, payment_id), updated_at = NOW()
		WHERE id = $1
		RETURNING` + donationColumns

	donation, err := scanDonation(r.q.QueryRow(ctx, query, id, status, paymentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update donation %d: %w", id, err)
	}

	return donation, nil
}

// List returns donations ordered by creation time descending, optionally
// filtered by payment status
func (r *DonationRepository) List(ctx context.Context, status *models.PaymentStatus) ([]*models.Donation, error) {
	query := `SELECT` + donationColumns + ` FROM donations`
	args := []any{}
	if status != nil {
		query += ` WHERE payment_status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, donation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate donations: %w", err)
	}

	return donations, nil
}
