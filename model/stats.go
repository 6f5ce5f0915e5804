package model

import "time"

// PlatformStats is the admin dashboard headline block.
type PlatformStats struct {
	TotalUsers       int64   `json:"total_users"`
	TotalOwners      int64   `json:"total_owners"`
	TotalBooks       int64   `json:"total_books"`
	TotalRentals     int64   `json:"total_rentals"`
	TotalRevenue     float64 `json:"total_revenue"`
	PendingApprovals int64   `json:"pending_approvals"`
	ActiveRentals    int64   `json:"active_rentals"`
	OverdueRentals   int64   `json:"overdue_rentals"`
}

type ActivityPoint struct {
	Day   string `json:"day"`
	Value int64  `json:"value"`
}

type TopBook struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	RentalCount int64  `json:"rental_count"`
}

type TopCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	BookCount   int64  `json:"book_count"`
	RentalCount int64  `json:"rental_count"`
}

type TopOwner struct {
	ID           int64   `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalRentals int64   `json:"total_rentals"`
}

type TopUser struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	RentalCount int64   `json:"rental_count"`
	TotalSpent  float64 `json:"total_spent"`
}

type ActivityEntry struct {
	Type      string    `json:"type"` // rental | return
	RentalID  int64     `json:"rental_id"`
	UserEmail string    `json:"user_email"`
	BookTitle string    `json:"book_title"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}
