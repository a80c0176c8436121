package handler

import (
	"fmt"
	"net/http"
	"testing"

	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
)

func TestListNotesScopedToTenant(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	globex := seedTenant(t, "Globex", "globex")
	alice, aliceToken := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	bob, _ := seedUser(t, "bob@acme.test", acme.ID, model.RoleMember)
	carol, _ := seedUser(t, "carol@globex.test", globex.ID, model.RoleMember)

	seedNote(t, "alice note", alice.ID, acme.ID)
	seedNote(t, "bob note", bob.ID, acme.ID)
	seedNote(t, "carol note", carol.ID, globex.ID)

	rec := doRequest(e, http.MethodGet, "/notes", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var notes []model.Note
	decodeBody(t, rec, &notes)
	if len(notes) != 2 {
		t.Fatalf("expected 2 tenant notes, got %d", len(notes))
	}
	for _, n := range notes {
		if n.TenantID != acme.ID {
			t.Fatalf("note %d leaked from tenant %d", n.ID, n.TenantID)
		}
	}
	// Tenant-wide visibility: alice sees bob's note in the list
	titles := map[string]bool{}
	for _, n := range notes {
		titles[n.Title] = true
	}
	if !titles["bob note"] {
		t.Fatalf("expected tenant-wide list to include other members' notes, got %v", titles)
	}
}

func TestListNotesOrderedNewestFirst(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)

	for i := 1; i <= 3; i++ {
		seedNote(t, fmt.Sprintf("note %d", i), alice.ID, acme.ID)
	}

	rec := doRequest(e, http.MethodGet, "/notes", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var notes []model.Note
	decodeBody(t, rec, &notes)
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].CreatedAt.After(notes[i-1].CreatedAt) {
			t.Fatalf("notes not ordered newest first: %v before %v", notes[i-1].CreatedAt, notes[i].CreatedAt)
		}
	}
}

func TestCreateNoteRequiresTitle(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	_, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)

	rec := doRequest(e, http.MethodPost, "/notes", token, map[string]string{"content": "no title"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := errorMessage(t, rec); msg != "Title is required" {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if n := countNotes(t); n != 0 {
		t.Fatalf("expected no note created, found %d", n)
	}
}

func TestCreateNoteDerivesOwnerAndTenantFromIdentity(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	globex := seedTenant(t, "Globex", "globex")
	alice, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)

	// tenant_id and user_id in the body must be ignored
	rec := doRequest(e, http.MethodPost, "/notes", token, map[string]interface{}{
		"title":     "smuggled",
		"content":   "",
		"user_id":   9999,
		"tenant_id": globex.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var note model.Note
	decodeBody(t, rec, &note)
	if note.UserID != alice.ID {
		t.Fatalf("expected owner %d, got %d", alice.ID, note.UserID)
	}
	if note.TenantID != acme.ID {
		t.Fatalf("expected tenant %d, got %d", acme.ID, note.TenantID)
	}
	if note.Content != "" {
		t.Fatalf("expected content to default to empty string, got %q", note.Content)
	}
}

func TestCreateNoteDoesNotEnforceQuota(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	_, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)

	// The free-plan note_limit is advisory only: the endpoint accepts
	// creations past it.
	for i := 0; i < model.FreePlanNoteLimit+2; i++ {
		rec := doRequest(e, http.MethodPost, "/notes", token, map[string]string{
			"title": fmt.Sprintf("note %d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if n := countNotes(t); n != int64(model.FreePlanNoteLimit+2) {
		t.Fatalf("expected %d notes, got %d", model.FreePlanNoteLimit+2, n)
	}
}

func TestGetNoteScopedToOwnerNotTenant(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, aliceToken := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	_, bobToken := seedUser(t, "bob@acme.test", acme.ID, model.RoleMember)

	note := seedNote(t, "alice note", alice.ID, acme.ID)

	// Owner fetches their note
	rec := doRequest(e, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got model.Note
	decodeBody(t, rec, &got)
	if got.Title != note.Title || got.Content != note.Content {
		t.Fatalf("round trip mismatch: got %q/%q", got.Title, got.Content)
	}

	// A member of the same tenant sees the note in the list but cannot
	// address it by ID
	rec = doRequest(e, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-owner: expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Note not found" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestGetNoteInvalidID(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	_, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)

	rec := doRequest(e, http.MethodGet, "/notes/not-a-number", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Note ID is required" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestUpdateNoteOwnerOnly(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, aliceToken := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	_, bobToken := seedUser(t, "bob@acme.test", acme.ID, model.RoleMember)

	note := seedNote(t, "before", alice.ID, acme.ID)

	// Non-owner update collapses to the non-distinguishing 404
	rec := doRequest(e, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), bobToken, map[string]string{
		"title": "hijack",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-owner: expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Note not found or access denied" {
		t.Fatalf("unexpected error message: %q", msg)
	}

	// A nonexistent note yields the exact same response
	rec = doRequest(e, http.MethodPut, "/notes/424242", bobToken, map[string]string{"title": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing note: expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Note not found or access denied" {
		t.Fatalf("unexpected error message: %q", msg)
	}

	// Owner update succeeds
	rec = doRequest(e, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), aliceToken, map[string]string{
		"title":   "after",
		"content": "updated content",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated model.Note
	decodeBody(t, rec, &updated)
	if updated.Title != "after" || updated.Content != "updated content" {
		t.Fatalf("update not applied: %q/%q", updated.Title, updated.Content)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("expected updated_at >= created_at, got %v < %v", updated.UpdatedAt, updated.CreatedAt)
	}

	// Fetch reflects the new state
	rec = doRequest(e, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), aliceToken, nil)
	var fetched model.Note
	decodeBody(t, rec, &fetched)
	if fetched.Title != "after" || fetched.Content != "updated content" {
		t.Fatalf("fetched note stale: %q/%q", fetched.Title, fetched.Content)
	}
}

func TestUpdateNoteRequiresTitle(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, token := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	note := seedNote(t, "keep me", alice.ID, acme.ID)

	rec := doRequest(e, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), token, map[string]string{
		"content": "only content",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var unchanged model.Note
	database.GetDB().First(&unchanged, note.ID)
	if unchanged.Title != "keep me" {
		t.Fatalf("note mutated by rejected update: %q", unchanged.Title)
	}
}

func TestDeleteNoteOwnerOnly(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, aliceToken := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	_, bobToken := seedUser(t, "bob@acme.test", acme.ID, model.RoleMember)

	note := seedNote(t, "doomed", alice.ID, acme.ID)

	// Non-owner delete: 404, note survives
	rec := doRequest(e, http.MethodDelete, fmt.Sprintf("/notes/%d", note.ID), bobToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-owner: expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Note not found or access denied" {
		t.Fatalf("unexpected error message: %q", msg)
	}
	if n := countNotes(t); n != 1 {
		t.Fatalf("note deleted by non-owner, %d remain", n)
	}

	// Owner delete succeeds
	rec = doRequest(e, http.MethodDelete, fmt.Sprintf("/notes/%d", note.ID), aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &resp)
	if resp.Message != "Note deleted successfully" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}

	// Note is gone
	rec = doRequest(e, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestNotesRequireAuthentication(t *testing.T) {
	e := setupTest(t)

	acme := seedTenant(t, "Acme", "acme")
	alice, _ := seedUser(t, "alice@acme.test", acme.ID, model.RoleMember)
	note := seedNote(t, "private", alice.ID, acme.ID)

	cases := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/notes", nil},
		{http.MethodPost, "/notes", map[string]string{"title": "x"}},
		{http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), nil},
		{http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), map[string]string{"title": "x"}},
		{http.MethodDelete, fmt.Sprintf("/notes/%d", note.ID), nil},
		{http.MethodPost, "/tenants/acme/upgrade", nil},
	}

	for _, tc := range cases {
		// No token at all
		rec := doRequest(e, tc.method, tc.path, "", tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "Authentication required" {
			t.Fatalf("%s %s: unexpected error message %q", tc.method, tc.path, msg)
		}

		// Garbage token
		rec = doRequest(e, tc.method, tc.path, "not-a-real-token", tc.body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s with bad token: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "Invalid authentication token" {
			t.Fatalf("%s %s: unexpected error message %q", tc.method, tc.path, msg)
		}
	}

	// No mutation happened
	if n := countNotes(t); n != 1 {
		t.Fatalf("unauthenticated requests mutated notes: %d", n)
	}
	var unchanged model.Note
	database.GetDB().First(&unchanged, note.ID)
	if unchanged.Title != "private" {
		t.Fatalf("note mutated: %q", unchanged.Title)
	}
}

func TestNoProfileReturnsNotFound(t *testing.T) {
	e := setupTest(t)

	// A user without a provisioned profile cannot use the notes API
	hashless := model.User{Email: "ghost@nowhere.test", Password: "x"}
	if err := database.GetDB().Create(&hashless).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := jwtutil.GenerateToken(hashless.Email, hashless.ID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/notes", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "User profile not found" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}
