package model

import "time"

type RentalStatus string

const (
	RentalActive   RentalStatus = "ACTIVE"
	RentalReturned RentalStatus = "RETURNED"
	RentalOverdue  RentalStatus = "OVERDUE"
)

// Rental is one borrow agreement. book_id/user_id/owner_id and the price
// captured at creation time never change afterwards.
type Rental struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	BookID      int64        `json:"book_id"`
	OwnerID     int64        `json:"owner_id"`
	RentalPrice float64      `json:"rental_price"`
	Status      RentalStatus `json:"status"`
	RentalDate  time.Time    `json:"rental_date"`
	DueDate     time.Time    `json:"due_date"`
	ReturnDate  *time.Time   `json:"return_date,omitempty"`
}

// RentalDetail joins book/user/owner display fields onto a rental row.
type RentalDetail struct {
	Rental
	BookTitle      string  `json:"book_title"`
	BookAuthor     string  `json:"book_author"`
	BookImage      *string `json:"book_image,omitempty"`
	UserEmail      string  `json:"user_email"`
	OwnerFirstName string  `json:"owner_first_name"`
	OwnerLastName  string  `json:"owner_last_name"`
	CategoryName   string  `json:"category_name"`
}

type RentalFilter struct {
	Page    int
	Limit   int
	Status  string
	UserID  int64
	OwnerID int64
	BookID  int64
	Search  string
}

// RentalStats is the role-scoped overview: TotalAmount is revenue for
// admins/owners and spend for users.
type RentalStats struct {
	TotalRentals    int64   `json:"total_rentals"`
	ActiveRentals   int64   `json:"active_rentals"`
	ReturnedRentals int64   `json:"returned_rentals"`
	OverdueRentals  int64   `json:"overdue_rentals"`
	TotalAmount     float64 `json:"total_amount"`
	AveragePrice    float64 `json:"average_rental_price"`
}

// CreateRentalReq is the borrower-facing payload. RentalDays of zero means
// "not supplied" and defaults to 7; negative or fractional input is rejected.
// swagger:model CreateRentalReq
type CreateRentalReq struct {
	BookID     int64 `json:"book_id" validate:"required,gt=0"`
	RentalDays int   `json:"rental_days" validate:"omitempty,min=1,max=90"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}
