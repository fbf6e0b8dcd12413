package repository

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"bizcore/internal/models"
)

func testTokenStore(t *testing.T) *RefreshTokenStore {
	db := setupTestDB(t, t.Name())
	return NewRefreshTokenStore(db, zap.NewNop().Sugar())
}

func seedToken(t *testing.T, s *RefreshTokenStore, token string, userID uint, ttl time.Duration) *models.RefreshToken {
	rt := models.RefreshToken{
		Token:       token,
		UserID:      userID,
		ExpiresAt:   time.Now().Add(ttl),
		CreatedAt:   time.Now(),
		CreatedByIP: "10.0.0.1",
	}
	if err := s.Save(context.Background(), &rt); err != nil {
		t.Fatalf("seed token %s: %v", token, err)
	}
	return &rt
}

func TestTokenSaveAndGet(t *testing.T) {
	s := testTokenStore(t)
	seedToken(t, s, "tok-1", 1, time.Hour)
	got, err := s.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UserID != 1 {
		t.Fatalf("unexpected token: %+v", got)
	}
	if !got.IsActive(time.Now()) {
		t.Fatalf("fresh token should be active")
	}
}

func TestTokenGetUnknownIsNil(t *testing.T) {
	s := testTokenStore(t)
	got, err := s.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", got, err)
	}
}

func TestTokenActivity(t *testing.T) {
	now := time.Now()
	expired := models.RefreshToken{Token: "x", ExpiresAt: now.Add(-time.Minute)}
	if expired.IsActive(now) {
		t.Fatalf("expired token must be inactive")
	}
	revoked := models.RefreshToken{Token: "y", ExpiresAt: now.Add(time.Hour), IsRevoked: true}
	if revoked.IsActive(now) {
		t.Fatalf("revoked token must be inactive")
	}
	live := models.RefreshToken{Token: "z", ExpiresAt: now.Add(time.Hour)}
	if !live.IsActive(now) {
		t.Fatalf("unrevoked unexpired token must be active")
	}
}

func TestRevokeSingleToken(t *testing.T) {
	s := testTokenStore(t)
	ctx := context.Background()
	seedToken(t, s, "tok-1", 1, time.Hour)
	if err := s.Revoke(ctx, "tok-1", "10.0.0.2", ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err := s.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsRevoked || got.RevokedAt == nil || got.RevokedByIP != "10.0.0.2" {
		t.Fatalf("revocation fields not set: %+v", got)
	}
	if got.ReplacedByToken != "" {
		t.Fatalf("logout revocation must not set a replacement")
	}
}

func TestRevokeAllForUser(t *testing.T) {
	s := testTokenStore(t)
	ctx := context.Background()
	seedToken(t, s, "u1-a", 1, time.Hour)
	seedToken(t, s, "u1-b", 1, time.Hour)
	seedToken(t, s, "u2-a", 2, time.Hour)

	n, err := s.RevokeAllForUser(ctx, 1, "10.0.0.3")
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 revoked, got %d", n)
	}
	other, err := s.Get(ctx, "u2-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if other.IsRevoked {
		t.Fatalf("other user's token must stay live")
	}

	// Idempotent: nothing left to revoke.
	n, err = s.RevokeAllForUser(ctx, 1, "10.0.0.3")
	if err != nil {
		t.Fatalf("revoke all again: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 on second pass, got %d", n)
	}
}

func TestRotateChainsTokens(t *testing.T) {
	s := testTokenStore(t)
	ctx := context.Background()
	old := seedToken(t, s, "old", 1, time.Hour)
	replacement := &models.RefreshToken{
		Token:       "new",
		UserID:      1,
		ExpiresAt:   time.Now().Add(time.Hour),
		CreatedAt:   time.Now(),
		CreatedByIP: "10.0.0.4",
	}
	if err := s.Rotate(ctx, old, replacement, "10.0.0.4"); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	prev, err := s.Get(ctx, "old")
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if !prev.IsRevoked || prev.ReplacedByToken != "new" {
		t.Fatalf("old token should be revoked and point at its successor: %+v", prev)
	}
	next, err := s.Get(ctx, "new")
	if err != nil {
		t.Fatalf("get new: %v", err)
	}
	if next == nil || !next.IsActive(time.Now()) {
		t.Fatalf("replacement should be live: %+v", next)
	}

	count, err := s.ActiveCountForUser(ctx, 1)
	if err != nil {
		t.Fatalf("active count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rotation must keep exactly one live token, got %d", count)
	}
}

func TestRotateDuplicateRollsBack(t *testing.T) {
	s := testTokenStore(t)
	ctx := context.Background()
	old := seedToken(t, s, "old", 1, time.Hour)
	seedToken(t, s, "taken", 1, time.Hour)

	replacement := &models.RefreshToken{Token: "taken", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.Rotate(ctx, old, replacement, ""); err == nil {
		t.Fatalf("expected rotation failure on duplicate replacement")
	}

	got, err := s.Get(ctx, old.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsRevoked {
		t.Fatalf("failed rotation must not leave the old token revoked")
	}
}
