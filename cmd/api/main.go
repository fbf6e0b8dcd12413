package main

import (
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bizcore/internal/auth"
	"bizcore/internal/config"
	"bizcore/internal/events"
	"bizcore/internal/httpserver"
	"bizcore/internal/logger"
	"bizcore/internal/models"
	"bizcore/internal/repository"
	"bizcore/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Env)
	defer lg.Sync()

	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.RefreshToken{}, &models.Customer{}, &models.Project{},
		&models.ServiceItem{}, &models.Appointment{}, &models.ContactRequest{},
		&models.Notification{}, &models.ActivityLog{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, lg)

	bus := events.NewBus(lg)
	if cfg.AMQPURL != "" {
		bus.SetRelay(events.NewAMQPRelay(cfg.AMQPURL, lg))
	}

	users := repository.NewUserRepository(db, lg)
	tokens := repository.NewRefreshTokenStore(db, lg)
	notifications := repository.NewNotificationRepository(db, lg)
	activity := service.NewActivityLogger(db, lg)
	appointments := service.NewAppointmentService(db, bus, activity, lg)

	svcs := httpserver.Services{
		Auth: service.NewAuthService(users, tokens, bus, lg, service.AuthConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  auth.ParseExpiry(cfg.AccessTokenTTL),
			RefreshTTL: auth.ParseExpiry(cfg.RefreshTokenTTL),
			Rotate:     cfg.RotateRefresh,
		}),
		Users:         service.NewUserService(db, users, tokens, activity, lg),
		Customers:     service.NewCustomerService(db, bus, activity, lg),
		Projects:      service.NewProjectService(db, activity, lg),
		Catalog:       service.NewServiceCatalog(db, activity, lg),
		Appointments:  appointments,
		Requests:      service.NewContactRequestService(db, users, appointments, bus, activity, lg),
		Notifications: service.NewNotificationService(notifications, users, bus, lg),
	}

	rdb := httpserver.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if rdb == nil && cfg.RedisAddr != "" {
		lg.Warnw("redis unreachable, login rate limiting disabled", "addr", cfg.RedisAddr)
	}

	router := httpserver.NewRouter(svcs, httpserver.RouterConfig{
		JWTSecret:         cfg.JWTSecret,
		LoginRateCapacity: cfg.LoginRateCapacity,
		LoginRateWindowMS: cfg.LoginRateWindowMS,
	}, rdb, lg)

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, _ := auth.HashPassword("changeme")
	u := models.User{
		Name:         "Administrator",
		Email:        "admin@bizcore.local",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Warnw("seed admin failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "email", u.Email)
}
