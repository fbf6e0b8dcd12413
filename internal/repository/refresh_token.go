package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/models"
)

// RefreshTokenStore persists issued refresh tokens keyed by the opaque token
// string. Tokens are never physically deleted in the normal flow; revocation
// mutates the row so rotation chains remain auditable.
type RefreshTokenStore struct {
	*Repository[models.RefreshToken]
}

func NewRefreshTokenStore(db *gorm.DB, lg *zap.SugaredLogger) *RefreshTokenStore {
	return &RefreshTokenStore{NewWithPK[models.RefreshToken](db, lg, "refresh token", "token")}
}

// Get returns the stored token, or (nil, nil) when unknown.
func (s *RefreshTokenStore) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	return s.FindByID(ctx, token, nil)
}

func (s *RefreshTokenStore) Save(ctx context.Context, t *models.RefreshToken) error {
	return s.Create(ctx, t)
}

// Revoke marks a single token revoked. replacedBy is set during rotation so
// the old token points forward to its successor; it is empty for logout.
func (s *RefreshTokenStore) Revoke(ctx context.Context, token, ip, replacedBy string) error {
	now := time.Now()
	changes := map[string]any{
		"is_revoked":    true,
		"revoked_at":    now,
		"revoked_by_ip": ip,
	}
	if replacedBy != "" {
		changes["replaced_by_token"] = replacedBy
	}
	_, err := s.Update(ctx, token, changes)
	return err
}

// RevokeAllForUser revokes every active token a user owns. Used for full
// logout, account deactivation, and password reset.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uint, ip string) (int64, error) {
	now := time.Now()
	res := s.DB().WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Updates(map[string]any{"is_revoked": true, "revoked_at": now, "revoked_by_ip": ip})
	if res.Error != nil {
		return 0, s.classify("revokeAllForUser", res.Error)
	}
	return res.RowsAffected, nil
}

// Rotate revokes the old token (pointing it at its replacement) and persists
// the new one as a single atomic unit, so a crash mid-rotation cannot leave
// the user with no live session.
func (s *RefreshTokenStore) Rotate(ctx context.Context, old *models.RefreshToken, replacement *models.RefreshToken, ip string) error {
	return s.WithTransaction(ctx, func(tx *Repository[models.RefreshToken]) error {
		txStore := &RefreshTokenStore{tx}
		if err := txStore.Revoke(ctx, old.Token, ip, replacement.Token); err != nil {
			return err
		}
		return txStore.Create(ctx, replacement)
	})
}

// ActiveCountForUser reports how many usable tokens a user currently holds.
func (s *RefreshTokenStore) ActiveCountForUser(ctx context.Context, userID uint) (int64, error) {
	return s.Count(ctx, Criteria{
		"user_id":    userID,
		"is_revoked": false,
		"expires_at": Op{Gt: time.Now()},
	})
}
