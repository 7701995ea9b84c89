package models

import (
	"time"
)

// DonationType distinguishes one-off gifts from recurring pledges
type DonationType string

const (
	DonationTypeSingle    DonationType = "single"
	DonationTypeRecurring DonationType = "recurring"
)

// Donation represents a single donation record. Its payment moves through the
// same pending/completed/cancelled machine as a raffle ticket, at the
// granularity of one record.
type Donation struct {
	ID            int64         `db:"id"`
	DonorName     string        `db:"donor_name"`
	DonorEmail    string        `db:"donor_email"`
	DonorPhone    *string       `db:"donor_phone"`
	Amount        float64       `db:"amount"`
	DonationType  DonationType  `db:"donation_type"`
	PaymentMethod string        `db:"payment_method"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentID     *string       `db:"payment_id"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}
