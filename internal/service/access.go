package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

type Action string

const (
	// ActionMutateLedger covers additions and modifications: anything that
	// moves the contract's committed value or current end date.
	ActionMutateLedger   Action = "MUTATE_LEDGER"
	ActionReportProgress Action = "REPORT_PROGRESS"
	ActionRead           Action = "READ"
)

// AccessGate decides whether a caller may perform an action on a contract.
// Implementations return ErrPermissionDenied (or ErrNotFound when the
// contract does not exist); the services propagate the error unchanged.
type AccessGate interface {
	Authorize(ctx context.Context, p model.Principal, contractID uuid.UUID, action Action) error
}
