package handler

import (
	"net/http"
	"time"

	"notes-service/internal/authz"
	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UpgradeTenant moves the caller's tenant from the free plan to pro. The
// caller must be an admin of the tenant addressed by slug, and the tenant
// must not already be on pro. No payment processing happens here: the
// upgrade sets the plan and raises the note limit to the unlimited sentinel.
//
// The check-then-set sequence is not wrapped in a transaction. Two
// concurrent upgrades can both pass the plan check; the outcome is
// idempotent in effect, and any later call is rejected by the guard.
func UpgradeTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("upgrade")

	slug := c.Param("slug")
	if slug == "" {
		log.Warn("Upgrade request without tenant slug")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tenant slug is required"})
	}

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	profile, err := getProfile(userID, true)
	if err != nil {
		log.Warn("User profile not found", zap.Uint("user_id", userID), zap.Error(err))
		prometheus.RecordAuthError("profile_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User profile not found"})
	}

	decision := authz.CanUpgradeTenant(profile, &profile.Tenant, slug)
	if !decision.Allowed {
		log.Warn("Tenant upgrade denied",
			zap.Uint("user_id", userID),
			zap.String("role", profile.Role),
			zap.String("slug", slug),
			zap.String("reason", decision.Reason))
		prometheus.RecordAuthError("upgrade_denied")
		return c.JSON(decision.Status, echo.Map{"error": decision.Reason})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("update")(time.Now())

	updates := map[string]interface{}{
		"subscription_plan": model.PlanPro,
		"note_limit":        model.ProPlanNoteLimit,
	}
	result := database.GetDB().Model(&model.Tenant{}).Where("slug = ?", slug).Updates(updates)
	if result.Error != nil {
		log.Error("Failed to upgrade tenant",
			zap.String("slug", slug),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	var tenant model.Tenant
	if result := database.GetDB().Where("slug = ?", slug).First(&tenant); result.Error != nil {
		log.Error("Failed to reload upgraded tenant",
			zap.String("slug", slug),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	go updateProTenantCount()

	log.Info("Tenant upgraded to Pro",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug),
		zap.Uint("upgraded_by", userID))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant upgraded to Pro successfully",
		"tenant":  tenant,
	})
}

// Helper function to update the pro tenant gauge
func updateProTenantCount() {
	var count int64
	database.GetDB().Model(&model.Tenant{}).
		Where("subscription_plan = ?", model.PlanPro).
		Count(&count)
	prometheus.UpdateProTenants(int(count))
}
