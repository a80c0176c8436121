package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold within their tenant.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UserProfile binds an identity to exactly one tenant and a role within it.
// Its primary key is the identity's user ID, so the profile lookup is a
// straight fetch by the authenticated user's ID.
type UserProfile struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
