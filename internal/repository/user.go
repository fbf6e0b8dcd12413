package repository

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/models"
)

type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository(db *gorm.DB, lg *zap.SugaredLogger) *UserRepository {
	return &UserRepository{New[models.User](db, lg, "user")}
}

// FindByEmail is case-insensitive; emails are stored lowercased but lookups
// normalize anyway. Returns (nil, nil) when no user matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOneByCriteria(ctx, Criteria{"email": strings.ToLower(strings.TrimSpace(email))}, nil)
}

// FindByResetTokenHash matches the stored reset-token hash. Expiry is checked
// by the caller so invalid and expired tokens produce the same failure.
func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.FindOneByCriteria(ctx, Criteria{"reset_token_hash": hash}, nil)
}
