package models

import (
	"time"

	"github.com/google/uuid"
)

// Session representa uma sessão de login ativa.
// Expiry is epoch seconds, matching the portal wire format.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Expiry    int64     `json:"expiry"`
	CreatedAt time.Time `json:"createdAt"`
}
