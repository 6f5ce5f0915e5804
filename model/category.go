package model

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type CategoryStats struct {
	CategoryName   string  `json:"category_name"`
	TotalBooks     int64   `json:"total_books"`
	ApprovedBooks  int64   `json:"approved_books"`
	AvailableBooks int64   `json:"available_books"`
	TotalRentals   int64   `json:"total_rentals"`
	TotalRevenue   float64 `json:"total_revenue"`
	UniqueOwners   int64   `json:"unique_owners"`
}
