package model

import (
	"time"

	"github.com/google/uuid"
)

type ProgressStatus string

const (
	ProgressDelayed ProgressStatus = "DELAYED"
	ProgressOnTrack ProgressStatus = "ON_TRACK"
	ProgressAhead   ProgressStatus = "AHEAD"
)

// ContractProgress is one contract-level progress report: the financial
// value and physical percentage accomplished in this report only. Reports
// are append-only; accumulated figures are always recomputed from history.
type ContractProgress struct {
	ID              uuid.UUID
	ContractID      uuid.UUID
	Value           int64
	PhysicalPercent float64
	Note            string
	CreatedAt       time.Time
}

// ActivityProgress is one activity-level progress report: physical quantity
// and cost accomplished in this report only.
type ActivityProgress struct {
	ID          uuid.UUID
	ActivityID  uuid.UUID
	Quantity    float64
	Cost        int64
	WorkDone    string
	WorkPlanned string
	CreatedAt   time.Time
}

// ContractProgressEntry is a contract report together with the accumulated
// figures as of that report. FinancialPercent is computed against the
// contract's committed value at query time, so it moves when later additions
// change the committed value.
type ContractProgressEntry struct {
	Report                     ContractProgress
	AccumulatedValue           int64
	AccumulatedPhysicalPercent float64
	FinancialPercent           float64
	Delta                      float64
	Status                     ProgressStatus
}

// ActivityProgressEntry is an activity report with its accumulated figures.
type ActivityProgressEntry struct {
	Report              ActivityProgress
	AccumulatedQuantity float64
	AccumulatedCost     int64
	PhysicalPercent     float64
	FinancialPercent    float64
}

// ProgressStatement is the projection behind the XLSX export.
type ProgressStatement struct {
	Contract    Contract
	GeneratedAt time.Time
	Entries     []ContractProgressEntry
}

// LedgerStatement is the projection behind the PDF export.
type LedgerStatement struct {
	Contract      Contract
	GeneratedAt   time.Time
	Additions     []Addition
	Modifications []Modification
}
