package entity

import (
	"database/sql"
	"time"
)

const (
	KeyStatusActive   = "active"
	KeyStatusDisabled = "disabled"
)

// APIKey is a relay gateway credential. Only the SHA-256 hash of the
// secret value is persisted; the secret itself is returned to the
// caller once at creation and never stored.
type APIKey struct {
	ID               uint64
	KeyID            string
	Name             string
	Description      string
	KeyHash          string
	KeyPrefix        string
	TokenLimit       sql.NullInt64
	DailyCostLimit   sql.NullFloat64
	MonthlyCostLimit sql.NullFloat64
	Status           string
	CreatedBy        string
	ExpiresAt        sql.NullTime
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
