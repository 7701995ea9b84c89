package models

import (
	"time"
)

// RaffleStatus represents the lifecycle state of a raffle
type RaffleStatus string

const (
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusCompleted RaffleStatus = "completed"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// Raffle represents a numbered-ticket fundraising campaign
type Raffle struct {
	ID           int64        `db:"id"`
	Title        string       `db:"title"`
	Description  string       `db:"description"`
	ImageURL     string       `db:"image_url"`
	TicketPrice  float64      `db:"ticket_price"`
	TotalNumbers int          `db:"total_numbers"`
	DrawDate     *time.Time   `db:"draw_date"`
	Status       RaffleStatus `db:"status"`
	WinnerNumber *int         `db:"winner_number"`
	WinnerName   *string      `db:"winner_name"`
	WinnerEmail  *string      `db:"winner_email"`
	DrawnAt      *time.Time   `db:"drawn_at"`
	CreatedBy    *int64       `db:"created_by"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// IsActive checks if the raffle still accepts reservations and can be drawn
func (r *Raffle) IsActive() bool {
	return r.Status == RaffleStatusActive
}

// IsDrawn checks if a winner has been committed
func (r *Raffle) IsDrawn() bool {
	return r.Status == RaffleStatusCompleted && r.WinnerNumber != nil
}

// ValidNumber checks that a ticket number falls inside the raffle's range
func (r *Raffle) ValidNumber(n int) bool {
	return n >= 1 && n <= r.TotalNumbers
}

// RaffleUpdate carries the whitelisted mutable fields for an update.
// Nil pointers leave the stored value untouched.
type RaffleUpdate struct {
	Title       *string
	Description *string
	ImageURL    *string
	TicketPrice *float64
	DrawDate    *time.Time
	Status      *RaffleStatus
}

// RaffleDetail is a raffle plus counts derived live from ticket state
type RaffleDetail struct {
	Raffle    *Raffle
	Sold      int
	Reserved  int
	Available int
}

// RaffleTicketStats summarizes ticket sales for one raffle
type RaffleTicketStats struct {
	TotalNumbers     int
	SoldNumbers      int
	PendingNumbers   int
	AvailableNumbers int
	TotalRevenue     float64
}

// DrawResult is the outcome of a completed draw
type DrawResult struct {
	RaffleID     int64
	WinnerNumber int
	WinnerName   string
	WinnerEmail  string
	DrawnAt      time.Time
}
