package model

import (
	"time"

	"github.com/google/uuid"
)

type ModificationKind string

const (
	ModificationSuspension ModificationKind = "SUSPENSION"
	ModificationExtension  ModificationKind = "EXTENSION"
)

// Modification is a schedule change on a contract. DurationDays is the
// inclusive day count of [StartDate, EndDate]; creating a modification of
// either kind shifts the contract's current end date forward by that many
// days, deleting it shifts back.
type Modification struct {
	ID           uuid.UUID
	ContractID   uuid.UUID
	Kind         ModificationKind
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	Note         string
	CreatedAt    time.Time
}
