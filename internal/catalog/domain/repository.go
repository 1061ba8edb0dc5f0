package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	// FindByID loads the product with its category and tag terms. Returns
	// nil when the id does not exist.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
}
