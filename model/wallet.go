package model

import "time"

// Wallet holds an owner's withdrawable balance and the monotonically
// non-decreasing lifetime earnings counter. Rentals credit both; returns
// never debit (rentals are non-refundable).
type Wallet struct {
	OwnerID     int64     `json:"owner_id"`
	Balance     float64   `json:"balance"`
	TotalEarned float64   `json:"total_earned"`
	UpdatedAt   time.Time `json:"updated_at"`
}
