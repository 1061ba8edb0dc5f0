package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("product not found")
var ErrInvalidTitle = errors.New("invalid title")
var ErrInvalidPrice = errors.New("invalid price")

// Product is a catalog entry. Variations are rows of their own with ParentID
// pointing at the parent product, matching how the commerce layer models
// them.
type Product struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ParentID   snowflake.ID      `gorm:"index" json:"parent_id,omitempty"`
	Title      string            `gorm:"not null" json:"title"`
	Slug       string            `gorm:"not null;uniqueIndex" json:"slug"`
	SKU        string            `gorm:"column:sku" json:"sku,omitempty"`
	Price      float64           `gorm:"not null" json:"price"`
	Attributes datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"attributes,omitempty"`
	Categories []Category        `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Tags       []Tag             `gorm:"many2many:product_tags" json:"tags,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Category struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`
	Slug string       `gorm:"not null;uniqueIndex" json:"slug"`
}

func (Category) TableName() string { return "categories" }

type Tag struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`
	Slug string       `gorm:"not null;uniqueIndex" json:"slug"`
}

func (Tag) TableName() string { return "tags" }
