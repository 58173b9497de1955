package identity

import (
	"time"

	"github.com/farmops/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginInput contains login request data
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains a successful login response
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo contains basic user information
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email,omitempty"`
}

// AuthorizeInput carries the two independent pieces the guard needs: the
// credential proving who the caller is, and the tenant selector naming
// which farm the caller wants to act in.
type AuthorizeInput struct {
	Credential     string
	TenantSelector string
}

// Authorization is the result of a successful guard check. All downstream
// reads and writes take FarmID from here, never from request data.
type Authorization struct {
	UserID       uuid.UUID
	FarmID       uuid.UUID
	MembershipID uuid.UUID
	Role         identity.MembershipRole
}

// RegisterUserInput contains user registration data
type RegisterUserInput struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// GrantMembershipInput contains membership grant data
type GrantMembershipInput struct {
	UserID uuid.UUID               `json:"user_id" binding:"required"`
	Role   identity.MembershipRole `json:"role" binding:"required"`
}

// MembershipInfo is the read view of one membership
type MembershipInfo struct {
	ID       uuid.UUID               `json:"id"`
	FarmID   uuid.UUID               `json:"farm_id"`
	UserID   uuid.UUID               `json:"user_id"`
	Role     identity.MembershipRole `json:"role"`
	Active   bool                    `json:"active"`
	JoinedAt time.Time               `json:"joined_at"`
}

func toMembershipInfo(m *identity.Membership) MembershipInfo {
	return MembershipInfo{
		ID:       m.ID,
		FarmID:   m.FarmID,
		UserID:   m.UserID,
		Role:     m.Role,
		Active:   m.Active,
		JoinedAt: m.JoinedAt,
	}
}
