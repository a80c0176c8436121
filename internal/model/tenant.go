package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription plans a tenant can be on.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// FreePlanNoteLimit is the default note cap for free-plan tenants.
const FreePlanNoteLimit = 3

// ProPlanNoteLimit is the sentinel written on upgrade. It is a large finite
// value standing in for "unlimited", not a true unlimited flag.
const ProPlanNoteLimit = 999999

// Tenant represents an organization: the unit of data isolation and the
// unit a subscription plan is attached to.
type Tenant struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug             string         `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	SubscriptionPlan string         `json:"subscription_plan" gorm:"type:varchar(20);not null;default:'free'"`
	NoteLimit        int            `json:"note_limit" gorm:"not null;default:3"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsPro reports whether the tenant is already on the pro plan.
func (t *Tenant) IsPro() bool {
	return t.SubscriptionPlan == PlanPro
}
