package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User is a storefront account. Meta carries free-form profile and billing
// fields (first_name, billing_city, ...).
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"not null;uniqueIndex" json:"email"`
	Login        string            `gorm:"not null;uniqueIndex" json:"login"`
	PasswordHash string            `gorm:"not null" json:"-"`
	Meta         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"meta,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
