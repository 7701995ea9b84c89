package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the payment lifecycle stage of a ticket or donation
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// CountsAgainstAvailability reports whether a ticket in this state holds its
// number. Cancelled tickets release their number for re-reservation.
func (s PaymentStatus) CountsAgainstAvailability() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted
}

// Ticket represents one numbered slot within a raffle
type Ticket struct {
	ID            int64         `db:"id"`
	RaffleID      int64         `db:"raffle_id"`
	TicketNumber  int           `db:"ticket_number"`
	BuyerName     string        `db:"buyer_name"`
	BuyerEmail    string        `db:"buyer_email"`
	BuyerPhone    *string       `db:"buyer_phone"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentID     *string       `db:"payment_id"`
	PurchaseID    *uuid.UUID    `db:"purchase_id"`
	PurchasedAt   *time.Time    `db:"purchased_at"`
	CreatedAt     time.Time     `db:"created_at"`
}

// PurchaseBatch is the result of reserving a selection of numbers in one
// checkout action. All tickets share the purchase correlation id.
type PurchaseBatch struct {
	PurchaseID    uuid.UUID
	RaffleID      int64
	Tickets       []*Ticket
	TicketNumbers []int
	TotalAmount   float64
	PaymentMethod string
}

// NumberAvailability is the live partition of a raffle's number range
type NumberAvailability struct {
	TotalNumbers     int
	SoldNumbers      []int
	ReservedNumbers  []int
	AvailableNumbers []int
}
