// Package authz holds the authorization and quota decisions for the notes
// service. Handlers resolve the caller's profile and tenant from the
// database, then ask this package whether the operation is permitted, so the
// rules stay testable without HTTP or a database.
package authz

import (
	"net/http"

	"notes-service/internal/model"
)

// Decision is the outcome of a policy check. A denied decision carries the
// HTTP status and error message the handler should return verbatim.
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the status and reason to surface.
func Deny(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// CanUpgradeTenant decides whether the caller may upgrade the tenant
// addressed by slug. The caller must be an admin, the slug must name the
// caller's own tenant (an admin cannot upgrade another tenant), and the
// tenant must not already be on the pro plan (the guard that makes repeated
// upgrade calls fail instead of silently re-applying).
func CanUpgradeTenant(profile *model.UserProfile, tenant *model.Tenant, slug string) Decision {
	if !profile.IsAdmin() {
		return Deny(http.StatusForbidden, "Admin access required")
	}
	if tenant.Slug != slug {
		return Deny(http.StatusForbidden, "Cannot upgrade other tenants")
	}
	if tenant.IsPro() {
		return Deny(http.StatusBadRequest, "Tenant is already on Pro plan")
	}
	return Allow()
}

// CanCreateNote reports whether the tenant has room for another note. Free
// tenants are capped at their note_limit (falling back to the free default
// when unset); pro tenants are never capped. This check is advisory: it
// drives the /me response and the client, the create endpoint itself does
// not enforce it.
func CanCreateNote(tenant *model.Tenant, noteCount int64) bool {
	if tenant.IsPro() {
		return true
	}
	limit := tenant.NoteLimit
	if limit <= 0 {
		limit = model.FreePlanNoteLimit
	}
	return noteCount < int64(limit)
}
