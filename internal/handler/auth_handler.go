package handler

import (
	"net/http"
	"time"

	"notes-service/internal/model"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies email/password credentials and issues a bearer token.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// The token carries identity only. Tenant membership and role are
	// resolved from the database on every authenticated request.
	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	// Increment active tokens gauge
	prometheus.IncreaseActiveTokens()

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	}

	// Include tenant context when the user has been provisioned a profile
	if profile, err := getProfile(user.ID, true); err == nil {
		response["tenant"] = map[string]interface{}{
			"id":                profile.Tenant.ID,
			"name":              profile.Tenant.Name,
			"slug":              profile.Tenant.Slug,
			"subscription_plan": profile.Tenant.SubscriptionPlan,
		}
		response["role"] = profile.Role

		log.Info("User logged in",
			zap.String("email", user.Email),
			zap.Uint("tenant_id", profile.TenantID),
			zap.String("role", profile.Role))
	} else {
		log.Info("User logged in without tenant profile", zap.String("email", user.Email))
	}

	return c.JSON(http.StatusOK, response)
}

// Register creates a new identity record. Tenant membership is provisioned
// out-of-band, so a freshly registered user has no profile yet.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Warn("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	// Create new user
	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	// Save to database - track DB insert operation
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Logout acknowledges a sign-out. Tokens are stateless, so this only adjusts
// the active-token gauge; the token stays valid until it expires.
func Logout(c echo.Context) error {
	log := logger.FromContext(c)

	prometheus.DecreaseActiveTokens()

	if email, ok := c.Get("email").(string); ok {
		log.Info("User signed out", zap.String("email", email))
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Signed out successfully"})
}

// MetricsHandler serves the Prometheus metrics endpoint.
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
