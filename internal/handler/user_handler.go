package handler

import (
	"net/http"

	"notes-service/internal/authz"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetCurrentUser returns the caller's identity together with the profile,
// tenant and note usage a dashboard needs: plan, note count, note limit and
// the advisory can_create_note flag. A user without a provisioned profile
// gets the bare identity back.
func GetCurrentUser(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}
	email, _ := c.Get("email").(string)

	response := echo.Map{
		"user": map[string]interface{}{
			"id":    userID,
			"email": email,
		},
	}

	profile, err := getProfile(userID, true)
	if err != nil {
		log.Warn("User has no profile", zap.Uint("user_id", userID))
		return c.JSON(http.StatusOK, response)
	}

	count := countTenantNotes(profile.TenantID)

	response["profile"] = map[string]interface{}{
		"id":        profile.ID,
		"tenant_id": profile.TenantID,
		"role":      profile.Role,
	}
	response["tenant"] = profile.Tenant
	response["notes"] = map[string]interface{}{
		"count":           count,
		"limit":           profile.Tenant.NoteLimit,
		"can_create_note": authz.CanCreateNote(&profile.Tenant, count),
	}

	return c.JSON(http.StatusOK, response)
}
