package identity

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MembershipRole is the role a user holds within one farm. Roles are
// strictly ordered; a higher role implies every lower one.
type MembershipRole string

const (
	RoleViewer  MembershipRole = "viewer"
	RoleMember  MembershipRole = "member"
	RoleManager MembershipRole = "manager"
	RoleOwner   MembershipRole = "owner"
)

var roleRank = map[MembershipRole]int{
	RoleViewer:  1,
	RoleMember:  2,
	RoleManager: 3,
	RoleOwner:   4,
}

// IsValid checks if the role is a known MembershipRole
func (r MembershipRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// String returns the string representation of the role
func (r MembershipRole) String() string {
	return string(r)
}

// AtLeast returns true if this role ranks equal to or above the required role
func (r MembershipRole) AtLeast(required MembershipRole) bool {
	return roleRank[r] >= roleRank[required]
}

// Membership is the join record proving a user may act within a farm.
// At most one active membership may exist per (farm, user) pair; the
// storage layer enforces this with a partial unique index, so concurrent
// grants cannot race past the application-level check.
type Membership struct {
	shared.BaseAggregateRoot
	FarmID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_membership_farm_user"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_membership_farm_user"`
	Role          MembershipRole `gorm:"type:varchar(20);not null;default:'viewer'"`
	Active        bool           `gorm:"not null;default:true"`
	JoinedAt      time.Time      `gorm:"not null"`
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// NewMembership creates a new active membership
func NewMembership(farmID, userID uuid.UUID, role MembershipRole) (*Membership, error) {
	if farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown membership role")
	}

	return &Membership{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FarmID:            farmID,
		UserID:            userID,
		Role:              role,
		Active:            true,
		JoinedAt:          time.Now(),
	}, nil
}

// ChangeRole updates the membership role
func (m *Membership) ChangeRole(role MembershipRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown membership role")
	}
	if !m.Active {
		return shared.NewDomainError("INVALID_STATE", "Cannot change role of an inactive membership")
	}

	m.Role = role
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// Deactivate revokes the membership. An inactive membership authorizes
// nothing; authorization checks always read the row fresh, so revocation
// takes effect on the next request.
func (m *Membership) Deactivate() error {
	if !m.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Membership is already inactive")
	}

	now := time.Now()
	m.Active = false
	m.DeactivatedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	return nil
}

// Reactivate restores a revoked membership
func (m *Membership) Reactivate() error {
	if m.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Membership is already active")
	}

	m.Active = true
	m.DeactivatedAt = nil
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// Authorizes returns true if this membership grants at least the required role
func (m *Membership) Authorizes(required MembershipRole) bool {
	return m.Active && m.Role.AtLeast(required)
}
