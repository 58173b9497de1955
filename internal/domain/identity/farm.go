package identity

import (
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
)

// FarmStatus represents the status of a farm (tenant)
type FarmStatus string

const (
	FarmStatusActive    FarmStatus = "active"
	FarmStatusSuspended FarmStatus = "suspended" // Suspended farms authorize nothing
)

// Farm is the tenant of the system. Every domain row is partitioned by a
// farm ID; memberships are the only bridge between users and farms.
type Farm struct {
	shared.BaseAggregateRoot
	Code   string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string     `gorm:"type:varchar(200);not null"`
	Status FarmStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Farm) TableName() string {
	return "farms"
}

// NewFarm creates a new farm with required fields
func NewFarm(code, name string) (*Farm, error) {
	if err := validateFarmCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Farm name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Farm name cannot exceed 200 characters")
	}

	return &Farm{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            FarmStatusActive,
	}, nil
}

// Rename updates the farm's display name
func (f *Farm) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Farm name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Farm name cannot exceed 200 characters")
	}

	f.Name = name
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// Suspend suspends the farm; all memberships stop authorizing
func (f *Farm) Suspend() error {
	if f.Status == FarmStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Farm is already suspended")
	}

	f.Status = FarmStatusSuspended
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// Activate reactivates a suspended farm
func (f *Farm) Activate() error {
	if f.Status == FarmStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Farm is already active")
	}

	f.Status = FarmStatusActive
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	return nil
}

// IsActive returns true if the farm is active
func (f *Farm) IsActive() bool {
	return f.Status == FarmStatusActive
}

func validateFarmCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Farm code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Farm code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Farm code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
