package authz

import (
	"testing"

	"bookmarket/model"

	"github.com/stretchr/testify/require"
)

var (
	admin    = model.Actor{UserID: 1, Role: model.RoleAdmin}
	borrower = model.Actor{UserID: 10, Role: model.RoleUser}
	lender   = model.Actor{UserID: 20, Role: model.RoleOwner, OwnerID: 5, OwnerApproved: true}
	pending  = model.Actor{UserID: 21, Role: model.RoleOwner, OwnerID: 6, OwnerApproved: false}
)

func TestAdminCanEverything(t *testing.T) {
	require.True(t, Can(admin, Delete, Book{OwnerID: 99}))
	require.True(t, Can(admin, Return, Rental{UserID: 1234}))
	require.True(t, Can(admin, Update, OwnerProfile{ID: 77}))
	require.True(t, Can(admin, Read, Platform{}))
}

func TestBookRules(t *testing.T) {
	visible := Book{OwnerID: 5, Approved: true, OwnerApproved: true}
	hidden := Book{OwnerID: 5, Approved: false, OwnerApproved: true}

	require.True(t, Can(borrower, Read, visible))
	require.False(t, Can(borrower, Read, hidden))
	require.False(t, Can(borrower, Read, Book{OwnerID: 5, Approved: true, OwnerApproved: false}))
	require.False(t, Can(borrower, Update, visible))

	require.True(t, Can(lender, Update, Book{OwnerID: 5}))
	require.False(t, Can(lender, Update, Book{OwnerID: 6}))
	require.True(t, Can(lender, Create, Book{}))
	require.False(t, Can(pending, Create, Book{}), "unapproved owners cannot list books")
}

func TestRentalRules(t *testing.T) {
	mine := Rental{UserID: 10, OwnerID: 5}
	other := Rental{UserID: 11, OwnerID: 5}

	require.True(t, Can(borrower, Create, Rental{}))
	require.True(t, Can(borrower, Read, mine))
	require.True(t, Can(borrower, Return, mine))
	require.False(t, Can(borrower, Read, other))
	require.False(t, Can(borrower, Return, other))

	require.True(t, Can(lender, Read, mine))
	require.True(t, Can(lender, Return, mine))
	require.False(t, Can(lender, Create, Rental{}))
	require.False(t, Can(lender, Return, Rental{UserID: 10, OwnerID: 9}))
}

func TestOwnerWalletAndPlatform(t *testing.T) {
	require.True(t, Can(lender, Read, OwnerProfile{ID: 5}))
	require.False(t, Can(lender, Read, OwnerProfile{ID: 6}))
	require.False(t, Can(borrower, Read, OwnerProfile{ID: 5}))

	require.True(t, Can(lender, Read, Wallet{OwnerID: 5}))
	require.False(t, Can(lender, Read, Wallet{OwnerID: 6}))
	require.False(t, Can(borrower, Read, Wallet{OwnerID: 5}))

	require.False(t, Can(borrower, Read, Platform{}))
	require.False(t, Can(lender, Read, Platform{}))

	require.True(t, Can(borrower, Read, Category{}))
	require.True(t, Can(lender, Read, Category{}))
	require.False(t, Can(borrower, Create, Category{}))
}
