package main

import (
	"notes-service/internal/model"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Demo bootstrap: provisions the fixed test tenants and accounts the service
// expects during development. Tenant and profile rows are normally created
// out-of-band, this command plays that role for local setups.

type seedUser struct {
	email string
	role  string
	slug  string
}

var seedTenants = []model.Tenant{
	{Name: "Acme", Slug: "acme", SubscriptionPlan: model.PlanFree, NoteLimit: model.FreePlanNoteLimit},
	{Name: "Globex", Slug: "globex", SubscriptionPlan: model.PlanFree, NoteLimit: model.FreePlanNoteLimit},
}

var seedUsers = []seedUser{
	{email: "admin@acme.test", role: model.RoleAdmin, slug: "acme"},
	{email: "user@acme.test", role: model.RoleMember, slug: "acme"},
	{email: "admin@globex.test", role: model.RoleAdmin, slug: "globex"},
	{email: "user@globex.test", role: model.RoleMember, slug: "globex"},
}

const seedPassword = "password"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()

	if cfg.Server.Env == "production" {
		log.Fatal("Refusing to seed demo accounts in production")
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	db := database.GetDB()

	tenantIDs := map[string]uint{}
	for _, t := range seedTenants {
		tenant := t
		if err := db.Where("slug = ?", tenant.Slug).FirstOrCreate(&tenant).Error; err != nil {
			log.Fatal("Failed to create tenant", zap.String("slug", t.Slug), zap.Error(err))
		}
		tenantIDs[tenant.Slug] = tenant.ID
		log.Info("Tenant ready", zap.String("slug", tenant.Slug), zap.Uint("id", tenant.ID))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash seed password", zap.Error(err))
	}

	for _, su := range seedUsers {
		user := model.User{Email: su.email, Password: string(hash)}
		if err := db.Where("email = ?", su.email).FirstOrCreate(&user).Error; err != nil {
			log.Fatal("Failed to create user", zap.String("email", su.email), zap.Error(err))
		}

		profile := model.UserProfile{
			ID:       user.ID,
			TenantID: tenantIDs[su.slug],
			Role:     su.role,
		}
		if err := db.Where("id = ?", user.ID).FirstOrCreate(&profile).Error; err != nil {
			log.Fatal("Failed to create profile", zap.String("email", su.email), zap.Error(err))
		}

		log.Info("User ready",
			zap.String("email", su.email),
			zap.String("role", su.role),
			zap.String("tenant", su.slug))
	}

	log.Info("Demo seed finished")
}
