package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTest wires an in-memory database and a router with the production
// routes and middleware. Each call gets a fresh database.
func setupTest(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	e := echo.New()

	auth := e.Group("/auth")
	auth.POST("/login", Login)
	auth.POST("/register", Register)
	auth.POST("/logout", Logout, middleware.AuthMiddleware)

	e.GET("/me", GetCurrentUser, middleware.AuthMiddleware)

	notes := e.Group("/notes")
	notes.Use(middleware.AuthMiddleware)
	notes.GET("", ListNotes)
	notes.POST("", CreateNote)
	notes.GET("/:id", GetNote)
	notes.PUT("/:id", UpdateNote)
	notes.DELETE("/:id", DeleteNote)

	tenants := e.Group("/tenants")
	tenants.Use(middleware.AuthMiddleware)
	tenants.POST("/:slug/upgrade", UpgradeTenant)

	return e
}

func seedTenant(t *testing.T, name, slug string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{
		Name:             name,
		Slug:             slug,
		SubscriptionPlan: model.PlanFree,
		NoteLimit:        model.FreePlanNoteLimit,
	}
	if err := database.GetDB().Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant %s: %v", slug, err)
	}
	return tenant
}

// seedUser creates a credential row plus a profile in the given tenant and
// returns the user with a valid bearer token for it.
func seedUser(t *testing.T, email string, tenantID uint, role string) (*model.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{Email: email, Password: string(hash)}
	if err := database.GetDB().Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	profile := &model.UserProfile{ID: user.ID, TenantID: tenantID, Role: role}
	if err := database.GetDB().Create(profile).Error; err != nil {
		t.Fatalf("seed profile %s: %v", email, err)
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		t.Fatalf("generate token for %s: %v", email, err)
	}
	return user, token
}

func seedNote(t *testing.T, title string, userID, tenantID uint) *model.Note {
	t.Helper()
	note := &model.Note{Title: title, Content: "content of " + title, UserID: userID, TenantID: tenantID}
	if err := database.GetDB().Create(note).Error; err != nil {
		t.Fatalf("seed note %s: %v", title, err)
	}
	return note
}

// doRequest performs a JSON request against the test router.
func doRequest(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	return resp.Error
}

func countNotes(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := database.GetDB().Model(&model.Note{}).Count(&count).Error; err != nil {
		t.Fatalf("count notes: %v", err)
	}
	return count
}
