package session

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// CartLine is one cart entry kept in the visitor session, keyed by LineKey.
type CartLine struct {
	Key         string       `json:"key"`
	ProductID   snowflake.ID `json:"product_id"`
	VariationID snowflake.ID `json:"variation_id,omitempty"`
	Quantity    int          `json:"quantity"`
}

// Data is everything persisted for one visitor session.
type Data struct {
	UserID snowflake.ID        `json:"user_id,omitempty"`
	Cart   map[string]CartLine `json:"cart,omitempty"`
}

// Store persists visitor sessions keyed by their opaque token.
type Store interface {
	// Get returns nil when no session exists for the token.
	Get(ctx context.Context, token string) (*Data, error)
	Save(ctx context.Context, token string, data *Data) error
	Delete(ctx context.Context, token string) error
}
