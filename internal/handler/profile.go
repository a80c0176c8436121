package handler

import (
	"time"

	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/prometheus"
)

// getProfile fetches the caller's profile row, optionally joined with its
// tenant. There is no caching: every request pays this lookup so role and
// plan changes take effect immediately.
func getProfile(userID uint, withTenant bool) (*model.UserProfile, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var profile model.UserProfile
	query := database.GetDB()
	if withTenant {
		query = query.Preload("Tenant")
	}
	if result := query.First(&profile, userID); result.Error != nil {
		return nil, result.Error
	}
	return &profile, nil
}

// countTenantNotes returns the number of notes currently held by a tenant.
func countTenantNotes(tenantID uint) int64 {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	database.GetDB().Model(&model.Note{}).Where("tenant_id = ?", tenantID).Count(&count)
	return count
}

// updateNoteCount refreshes the per-tenant note gauge.
func updateNoteCount(tenantID uint) {
	var slug string
	row := database.GetDB().Table("tenants").
		Select("slug").
		Where("id = ?", tenantID).
		Row()
	row.Scan(&slug)

	count := countTenantNotes(tenantID)
	prometheus.UpdateNotesPerTenant(tenantID, slug, int(count))
}
