package events

import (
	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
)

// LoginSucceeded fires after a credential check passes.
type LoginSucceeded struct {
	User *accountdomain.User
}

// LoginFailed fires after a credential check fails. Login is whatever the
// visitor typed into the login field, which may be an email address.
type LoginFailed struct {
	Login string
}

// LoggedOut fires while the session still references the authenticated user.
type LoggedOut struct{}

// AccountCreated fires after a new user row is committed.
type AccountCreated struct {
	UserID snowflake.ID
}

// AccountUpdated fires after a profile update is committed. PriorPasswordHash
// is the hash before the update so subscribers can detect password changes.
type AccountUpdated struct {
	UserID            snowflake.ID
	PriorPasswordHash string
}

// ItemAddedToCart fires after a line is written to the visitor's cart.
type ItemAddedToCart struct {
	LineKey     string
	ProductID   snowflake.ID
	VariationID snowflake.ID
	Quantity    int
}

// ItemRemovedFromCart fires before the line is deleted, so subscribers can
// still look the line up by its key.
type ItemRemovedFromCart struct {
	LineKey string
}
