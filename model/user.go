package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated caller, resolved by the auth middleware on
// every request. OwnerID/OwnerApproved are zero-valued for non-owners.
type Actor struct {
	UserID        int64
	Role          Role
	OwnerID       int64
	OwnerApproved bool
}

// RegisterReq represents the registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=USER OWNER"`
	FirstName string `json:"first_name" validate:"required_if=Role OWNER"`
	LastName  string `json:"last_name" validate:"required_if=Role OWNER"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Location  string `json:"location"`
}

// LoginReq represents the login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
