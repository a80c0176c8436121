package model

import (
	"time"

	"gorm.io/gorm"
)

// Note belongs to exactly one tenant and one creating user. TenantID is
// always derived server-side from the creator's profile, never taken from
// client input, so a note's tenant always matches its creator's tenant.
type Note struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null"`
	Content   string         `json:"content" gorm:"type:text"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
