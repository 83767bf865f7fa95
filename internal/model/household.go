package model

import "time"

// Household is the tenancy boundary. Every other record belongs, directly or
// through its parent, to exactly one household; cross-household references
// are rejected at the service layer.
type Household struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
