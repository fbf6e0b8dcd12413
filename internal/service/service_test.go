package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bizcore/internal/auth"
	"bizcore/internal/events"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

// testEnv bundles the wiring every service test needs against an isolated
// in-memory database.
type testEnv struct {
	db     *gorm.DB
	lg     *zap.SugaredLogger
	bus    *events.Bus
	users  *repository.UserRepository
	tokens *repository.RefreshTokenStore
}

func setupTestDB(t *testing.T, name string) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.Customer{}, &models.Project{}, &models.ServiceItem{},
		&models.Appointment{}, &models.ContactRequest{},
		&models.Notification{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t, t.Name())
	lg := zap.NewNop().Sugar()
	return &testEnv{
		db:     db,
		lg:     lg,
		bus:    events.NewBus(lg),
		users:  repository.NewUserRepository(db, lg),
		tokens: repository.NewRefreshTokenStore(db, lg),
	}
}

func (e *testEnv) authService(t *testing.T, rotate bool) *AuthService {
	t.Helper()
	return NewAuthService(e.users, e.tokens, e.bus, e.lg, AuthConfig{
		Secret:     "test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Rotate:     rotate,
	})
}

func (e *testEnv) seedUser(t *testing.T, email, password, role, status string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Name: "Test User", Email: email, PasswordHash: hash, Role: role, Status: status}
	if err := e.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return &u
}
