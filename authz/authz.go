// Package authz is the single place role permissions are decided. Every
// entry point asks Can(actor, action, resource) once instead of re-deriving
// role rules inline.
package authz

import "bookmarket/model"

type Action string

const (
	Read    Action = "read"
	Create  Action = "create"
	Update  Action = "update"
	Delete  Action = "delete"
	Approve Action = "approve"
	Return  Action = "return"
)

// Resource descriptors. Only the fields the rules consult are carried.

type Book struct {
	OwnerID       int64
	Approved      bool
	OwnerApproved bool
}

type Rental struct {
	UserID  int64
	OwnerID int64
}

type OwnerProfile struct{ ID int64 }

type Wallet struct{ OwnerID int64 }

type Category struct{}

// Platform covers the admin-only surface: owner administration, sweeps,
// dashboard aggregates.
type Platform struct{}

// Can reports whether the actor may perform action on resource. Unknown
// combinations are denied.
func Can(a model.Actor, action Action, res any) bool {
	if a.Role == model.RoleAdmin {
		return true
	}

	switch r := res.(type) {
	case Book:
		return canBook(a, action, r)
	case Rental:
		return canRental(a, action, r)
	case OwnerProfile:
		return a.Role == model.RoleOwner && a.OwnerID == r.ID &&
			(action == Read || action == Update)
	case Wallet:
		return a.Role == model.RoleOwner && a.OwnerID == r.OwnerID && action == Read
	case Category:
		return action == Read
	case Platform:
		return false
	}
	return false
}

func canBook(a model.Actor, action Action, b Book) bool {
	switch a.Role {
	case model.RoleUser:
		// Users only ever see approved books from approved owners.
		return action == Read && b.Approved && b.OwnerApproved
	case model.RoleOwner:
		switch action {
		case Create:
			return a.OwnerApproved
		case Read, Update, Delete:
			return a.OwnerID == b.OwnerID
		}
	}
	return false
}

func canRental(a model.Actor, action Action, r Rental) bool {
	switch a.Role {
	case model.RoleUser:
		switch action {
		case Create:
			return true
		case Read, Return:
			return a.UserID == r.UserID
		}
	case model.RoleOwner:
		// Lenders can inspect and accept returns for their own books,
		// but never open rentals.
		return (action == Read || action == Return) && a.OwnerID == r.OwnerID
	}
	return false
}
