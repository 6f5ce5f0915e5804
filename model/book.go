package model

import "time"

type Book struct {
	ID                int64      `json:"id"`
	OwnerID           int64      `json:"owner_id"`
	CategoryID        int64      `json:"category_id"`
	Title             string     `json:"title"`
	Author            string     `json:"author"`
	ISBN              *string    `json:"isbn,omitempty"`
	Description       *string    `json:"description,omitempty"`
	RentalPrice       float64    `json:"rental_price"`
	TotalQuantity     int64      `json:"total_quantity"`
	AvailableQuantity int64      `json:"available_quantity"`
	IsApproved        bool       `json:"is_approved"`
	ApprovedBy        *int64     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// BookDetail joins owner and category display fields onto a book row.
type BookDetail struct {
	Book
	OwnerFirstName string  `json:"owner_first_name"`
	OwnerLastName  string  `json:"owner_last_name"`
	OwnerLocation  *string `json:"owner_location,omitempty"`
	OwnerApproved  bool    `json:"owner_approved"`
	OwnerEmail     string  `json:"owner_email"`
	CategoryName   string  `json:"category_name"`
}

// BookFilter carries the list-endpoint query parameters. Zero values mean
// "not set". Role scoping is applied by the service, not the caller.
type BookFilter struct {
	Page         int
	Limit        int
	CategoryID   int64
	Author       string
	OwnerID      int64
	Location     string
	Search       string
	ApprovedOnly bool
}

// CreateBookReq is the owner-facing creation payload.
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	CategoryID    int64   `json:"category_id" validate:"required,gt=0"`
	ISBN          *string `json:"isbn"`
	Description   *string `json:"description"`
	RentalPrice   float64 `json:"rental_price" validate:"required,gt=0"`
	TotalQuantity int64   `json:"total_quantity" validate:"omitempty,gt=0"`
	ImageURL      *string `json:"image_url"`
}

// UpdateBookReq uses pointers so absent fields are left untouched.
// swagger:model UpdateBookReq
type UpdateBookReq struct {
	Title             *string  `json:"title"`
	Author            *string  `json:"author"`
	CategoryID        *int64   `json:"category_id"`
	ISBN              *string  `json:"isbn"`
	Description       *string  `json:"description"`
	RentalPrice       *float64 `json:"rental_price" validate:"omitempty,gt=0"`
	TotalQuantity     *int64   `json:"total_quantity" validate:"omitempty,gte=0"`
	AvailableQuantity *int64   `json:"available_quantity" validate:"omitempty,gte=0"`
	ImageURL          *string  `json:"image_url"`
	IsApproved        *bool    `json:"is_approved"`
}
