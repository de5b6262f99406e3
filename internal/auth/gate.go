package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
	"github.com/veeduria/obras-service/internal/service"
)

// ContractDirectory resolves contract ownership for contractor-scoped
// access checks.
type ContractDirectory interface {
	GetContractorOrgID(ctx context.Context, contractID uuid.UUID) (uuid.UUID, error)
}

// Gate is the role-based access gate injected into the services. Admins and
// supervisors may do anything; contractors may read and report progress on
// contracts assigned to their organization; auditors are read-only.
type Gate struct {
	contracts ContractDirectory
}

func NewGate(contracts ContractDirectory) *Gate {
	return &Gate{contracts: contracts}
}

func (g *Gate) Authorize(ctx context.Context, p model.Principal, contractID uuid.UUID, action service.Action) error {
	if p.IsAdmin() || p.IsSupervisor() {
		return nil
	}

	switch p.Role {
	case model.RoleAuditor:
		if action == service.ActionRead {
			return nil
		}
		return service.ErrPermissionDenied
	case model.RoleContractor:
		if action == service.ActionMutateLedger {
			return service.ErrPermissionDenied
		}
		orgID, err := g.contracts.GetContractorOrgID(ctx, contractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: contract", service.ErrNotFound)
			}
			return err
		}
		if orgID != p.OrgID {
			return service.ErrPermissionDenied
		}
		return nil
	default:
		return service.ErrPermissionDenied
	}
}
