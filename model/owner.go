package model

import "time"

type Owner struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      *string    `json:"phone,omitempty"`
	Address    *string    `json:"address,omitempty"`
	Location   *string    `json:"location,omitempty"`
	IsApproved bool       `json:"is_approved"`
	ApprovedBy *int64     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// OwnerDetail is the admin listing shape: profile plus wallet and
// book/rental aggregates.
type OwnerDetail struct {
	Owner
	Email         string  `json:"email"`
	IsActive      bool    `json:"is_active"`
	Balance       float64 `json:"balance"`
	TotalEarned   float64 `json:"total_earned"`
	TotalBooks    int64   `json:"total_books"`
	ApprovedBooks int64   `json:"approved_books"`
	TotalRentals  int64   `json:"total_rentals"`
}

type OwnerStats struct {
	TotalBooks     int64   `json:"total_books"`
	ApprovedBooks  int64   `json:"approved_books"`
	TotalRentals   int64   `json:"total_rentals"`
	ActiveRentals  int64   `json:"active_rentals"`
	TotalRevenue   float64 `json:"total_revenue"`
	CurrentBalance float64 `json:"current_balance"`
}

// UpdateOwnerReq uses pointers so absent fields are left untouched.
// swagger:model UpdateOwnerReq
type UpdateOwnerReq struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Location   *string `json:"location"`
	IsApproved *bool   `json:"is_approved"`
}
