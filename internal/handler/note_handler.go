package handler

import (
	"net/http"
	"strconv"
	"time"

	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NoteRequest defines the structure for note creation/update requests.
// Tenant and user identifiers are never read from the body.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListNotes returns every note in the caller's tenant, newest first. List
// visibility is tenant-wide: all members see all tenant notes, unlike the
// single-note endpoints which are scoped to the owning user.
func ListNotes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("list")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	profile, err := getProfile(userID, false)
	if err != nil {
		log.Warn("User profile not found", zap.Uint("user_id", userID), zap.Error(err))
		prometheus.RecordAuthError("profile_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User profile not found"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	notes := []model.Note{}
	result := database.GetDB().
		Where("tenant_id = ?", profile.TenantID).
		Order("created_at desc").
		Find(&notes)
	if result.Error != nil {
		log.Error("Failed to retrieve notes",
			zap.Uint("tenant_id", profile.TenantID),
			zap.Error(result.Error))
		prometheus.RecordNoteError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	log.Info("Notes retrieved",
		zap.Int("count", len(notes)),
		zap.Uint("tenant_id", profile.TenantID))
	return c.JSON(http.StatusOK, notes)
}

// CreateNote creates a note owned by the caller inside the caller's tenant.
// The tenant's note_limit is not checked here: quota is advisory and lives in
// the policy layer and the client.
func CreateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("create")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	profile, err := getProfile(userID, false)
	if err != nil {
		log.Warn("User profile not found", zap.Uint("user_id", userID), zap.Error(err))
		prometheus.RecordAuthError("profile_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User profile not found"})
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		prometheus.RecordNoteError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		log.Warn("Note creation without title", zap.Uint("user_id", userID))
		prometheus.RecordNoteError("missing_title")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Title is required"})
	}

	// Owner and tenant always come from the resolved identity, never from
	// the request body
	note := model.Note{
		Title:    req.Title,
		Content:  req.Content,
		UserID:   userID,
		TenantID: profile.TenantID,
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	result := database.GetDB().Create(&note)
	if result.Error != nil {
		log.Error("Failed to create note",
			zap.String("title", req.Title),
			zap.Uint("tenant_id", profile.TenantID),
			zap.Error(result.Error))
		prometheus.RecordNoteError("db_error")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": result.Error.Error()})
	}

	// Update note count metric
	go updateNoteCount(profile.TenantID)

	log.Info("Note created",
		zap.Uint("id", note.ID),
		zap.Uint("user_id", note.UserID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusCreated, note)
}

// GetNote retrieves a single note by ID. The lookup is scoped to the owning
// user, not the tenant: members can browse team notes through the list
// endpoint but can only address their own notes by ID.
func GetNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("get")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")), zap.Error(err))
		prometheus.RecordNoteError("invalid_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Note ID is required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("query")(time.Now())

	var note model.Note
	result := database.GetDB().Where("id = ? AND user_id = ?", id, userID).First(&note)
	if result.Error != nil {
		log.Warn("Note not found or not owned by caller",
			zap.Uint64("note_id", id),
			zap.Uint("user_id", userID))
		prometheus.RecordNoteError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found"})
	}

	return c.JSON(http.StatusOK, note)
}

// UpdateNote updates the title and content of a note owned by the caller.
// Any failure past validation collapses into one 404 response so callers
// cannot distinguish "does not exist" from "owned by someone else".
func UpdateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("update")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")), zap.Error(err))
		prometheus.RecordNoteError("invalid_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Note ID is required"})
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("note_id", id), zap.Error(err))
		prometheus.RecordNoteError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		log.Warn("Note update without title", zap.Uint64("note_id", id))
		prometheus.RecordNoteError("missing_title")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Title is required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("update")(time.Now())

	var note model.Note
	result := database.GetDB().Where("id = ? AND user_id = ?", id, userID).First(&note)
	if result.Error != nil {
		log.Warn("Note not found or not owned by caller",
			zap.Uint64("note_id", id),
			zap.Uint("user_id", userID))
		prometheus.RecordNoteError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found or access denied"})
	}

	note.Title = req.Title
	note.Content = req.Content

	if result := database.GetDB().Save(&note); result.Error != nil {
		log.Error("Failed to update note",
			zap.Uint64("note_id", id),
			zap.Error(result.Error))
		prometheus.RecordNoteError("db_error")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found or access denied"})
	}

	log.Info("Note updated",
		zap.Uint("id", note.ID),
		zap.Uint("user_id", note.UserID),
		zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusOK, note)
}

// DeleteNote deletes a note owned by the caller. Like UpdateNote, every
// failure is the same 404 response.
func DeleteNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("delete")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("missing_identity")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid note ID", zap.String("id", c.Param("id")), zap.Error(err))
		prometheus.RecordNoteError("invalid_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Note ID is required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Where("id = ? AND user_id = ?", id, userID).Delete(&model.Note{})
	if result.Error != nil || result.RowsAffected == 0 {
		log.Warn("Note not found or not owned by caller",
			zap.Uint64("note_id", id),
			zap.Uint("user_id", userID),
			zap.Error(result.Error))
		prometheus.RecordNoteError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Note not found or access denied"})
	}

	// Update note count metric
	if profile, err := getProfile(userID, false); err == nil {
		go updateNoteCount(profile.TenantID)
	}

	log.Info("Note deleted",
		zap.Uint64("note_id", id),
		zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted successfully"})
}
