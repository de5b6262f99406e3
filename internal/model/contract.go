package model

import (
	"time"

	"github.com/google/uuid"
)

// Contract is the ledger aggregate. CommittedValue and CurrentEndDate are
// derived state: the initial value/date plus the net effect of all surviving
// additions and modifications, applied in creation order. Only the addition
// and modification services may move them.
type Contract struct {
	ID              uuid.UUID
	ContractorOrgID uuid.UUID
	Name            string
	InitialValue    int64
	CommittedValue  int64
	StartDate       time.Time
	InitialEndDate  time.Time
	CurrentEndDate  time.Time
	CreatedAt       time.Time
}

// WorkPoint (CUO) is a single intervention site under a contract.
type WorkPoint struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	Name       string
	CreatedAt  time.Time
}

// Activity is a unit of work under a work point. PhysicalTarget is the
// ceiling for accumulated activity progress. ContractID is resolved through
// the owning work point when the activity is loaded.
type Activity struct {
	ID              uuid.UUID
	WorkPointID     uuid.UUID
	ContractID      uuid.UUID
	Description     string
	Unit            string
	PhysicalTarget  float64
	FinancialTarget int64
	CreatedAt       time.Time
}
