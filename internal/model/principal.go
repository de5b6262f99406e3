package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleContractor Role = "CONTRACTOR"
	RoleAuditor    Role = "AUDITOR"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsSupervisor() bool { return p.Role == RoleSupervisor }
func (p Principal) IsContractor() bool { return p.Role == RoleContractor }
func (p Principal) IsAuditor() bool    { return p.Role == RoleAuditor }
