package model

import (
	"time"

	"github.com/google/uuid"
)

// Addition is a signed budget change against a contract's committed value.
type Addition struct {
	ID            uuid.UUID
	ContractID    uuid.UUID
	Amount        int64
	EffectiveDate time.Time
	Note          string
	CreatedAt     time.Time
}
