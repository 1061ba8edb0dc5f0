package domain

import (
	"context"
	"time"
)

// Setting keys for the Sift integration.
const (
	KeyJSKey  = "sift_js_key"
	KeyAPIKey = "sift_api_key"
)

// Setting is one persisted configuration value.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Service resolves the two integration secrets. A deployment-level constant
// (environment) takes precedence over the stored setting, and the stored
// value cannot override it.
type Service interface {
	JSKey(ctx context.Context) (string, error)
	APIKey(ctx context.Context) (string, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	// Locked reports whether the key is pinned by a deployment constant.
	Locked(key string) bool
}
