package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bizcore/internal/apperr"
	"bizcore/internal/auth"
	"bizcore/internal/events"
	"bizcore/internal/models"
	"bizcore/internal/repository"
	"bizcore/internal/validation"
)

// Login, refresh and reset flows deliberately collapse "no such user",
// "wrong password" and "inactive account" into one generic Unauthorized
// message; the precise reason only appears in internal logs.
const genericAuthError = "invalid email or password"

const resetTokenTTL = 24 * time.Hour

type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Rotate     bool
}

type AuthService struct {
	users  *repository.UserRepository
	tokens *repository.RefreshTokenStore
	bus    *events.Bus
	lg     *zap.SugaredLogger
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(users *repository.UserRepository, tokens *repository.RefreshTokenStore, bus *events.Bus, lg *zap.SugaredLogger, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, bus: bus, lg: lg, cfg: cfg, now: time.Now}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// PublicUser is the outward projection of a user; the password hash and
// reset-token fields never leave the service layer.
type PublicUser struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

func toPublicUser(u *models.User) PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Status:         u.Status,
		ProfilePicture: u.ProfilePicture,
		LastLoginAt:    u.LastLoginAt,
	}
}

type AuthResponse struct {
	ID           uint       `json:"id"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    int64      `json:"expiresIn"` // milliseconds
	User         PublicUser `json:"user"`
}

type RefreshResponse struct {
	ID           uint      `json:"id"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Login authenticates credentials and mints an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput, ip string) (*AuthResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.lg.Infow("login rejected", "reason", "unknown email", "email", in.Email, "ip", ip)
		return nil, apperr.Unauthorized(genericAuthError)
	}
	if u.Status != models.StatusActive {
		s.lg.Infow("login rejected", "reason", "account not active", "user_id", u.ID, "status", u.Status, "ip", ip)
		return nil, apperr.Unauthorized(genericAuthError)
	}
	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		s.lg.Infow("login rejected", "reason", "password mismatch", "user_id", u.ID, "ip", ip)
		return nil, apperr.Unauthorized(genericAuthError)
	}

	access, err := auth.SignAccessToken(s.cfg.Secret, u.ID, u.Email, u.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Internal("token signing failed", err)
	}
	refresh, err := s.issueRefreshToken(ctx, u.ID, ip)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := s.users.Update(ctx, u.ID, map[string]any{"last_login_at": now}); err != nil {
		s.lg.Warnw("last login update failed", "user_id", u.ID, "error", err)
	}
	u.LastLoginAt = &now

	return &AuthResponse{
		ID:           u.ID,
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    s.cfg.AccessTTL.Milliseconds(),
		User:         toPublicUser(u),
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. With
// rotation enabled the old token is revoked and pointed at its replacement;
// otherwise it is reused until it expires.
func (s *AuthService) Refresh(ctx context.Context, in RefreshInput, ip string) (*RefreshResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	stored, err := s.tokens.Get(ctx, in.RefreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.IsActive(s.now()) {
		s.lg.Infow("refresh rejected", "reason", "token missing or inactive", "ip", ip)
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}
	u, err := s.users.FindByID(ctx, stored.UserID, nil)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Status != models.StatusActive {
		// A token that outlived its account is closed out on sight.
		if err := s.tokens.Revoke(ctx, stored.Token, ip, ""); err != nil {
			s.lg.Warnw("revoking orphaned token failed", "error", err)
		}
		s.lg.Infow("refresh rejected", "reason", "account not active", "user_id", stored.UserID, "ip", ip)
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}

	current := stored
	if s.cfg.Rotate {
		replacement := &models.RefreshToken{
			UserID:      u.ID,
			ExpiresAt:   s.now().Add(s.cfg.RefreshTTL),
			CreatedAt:   s.now(),
			CreatedByIP: ip,
		}
		raw, err := auth.NewOpaqueToken()
		if err != nil {
			return nil, apperr.Internal("token generation failed", err)
		}
		replacement.Token = raw
		if err := s.tokens.Rotate(ctx, stored, replacement, ip); err != nil {
			return nil, err
		}
		current = replacement
	}

	access, err := auth.SignAccessToken(s.cfg.Secret, u.ID, u.Email, u.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Internal("token signing failed", err)
	}
	return &RefreshResponse{
		ID:           u.ID,
		AccessToken:  access,
		RefreshToken: current.Token,
		ExpiresIn:    s.cfg.AccessTTL.Milliseconds(),
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    s.now(),
	}, nil
}

// Logout revokes a single session when a refresh token is supplied, or every
// session the user owns when it is omitted. A token that belongs to someone
// else is logged and ignored, never an error.
func (s *AuthService) Logout(ctx context.Context, userID uint, refreshToken, ip string) error {
	if refreshToken == "" {
		n, err := s.tokens.RevokeAllForUser(ctx, userID, ip)
		if err != nil {
			return err
		}
		s.lg.Infow("logout all sessions", "user_id", userID, "revoked", n)
		return nil
	}
	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return err
	}
	if stored == nil {
		s.lg.Infow("logout with unknown token ignored", "user_id", userID, "ip", ip)
		return nil
	}
	if stored.UserID != userID {
		s.lg.Warnw("logout token ownership mismatch ignored", "user_id", userID, "token_owner", stored.UserID, "ip", ip)
		return nil
	}
	return s.tokens.Revoke(ctx, stored.Token, ip, "")
}

// ForgotPassword always reports success so callers cannot probe which
// addresses have accounts. A reset token is only minted for live accounts;
// its hash and a 24h expiry are stored and the raw token is handed to the
// event bus for out-of-band delivery.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if u == nil || u.Status != models.StatusActive {
		s.lg.Infow("password reset request for unusable account", "email", in.Email)
		return nil
	}
	raw, err := auth.NewOpaqueToken()
	if err != nil {
		return apperr.Internal("token generation failed", err)
	}
	hash := auth.HashToken(raw)
	expiry := s.now().Add(resetTokenTTL)
	if _, err := s.users.Update(ctx, u.ID, map[string]any{
		"reset_token_hash":   hash,
		"reset_token_expiry": expiry,
	}); err != nil {
		return err
	}
	s.bus.Emit(ctx, events.PasswordResetRequested, map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
		"token":   raw,
	})
	return nil
}

// ValidateResetToken checks the presented token against the stored hash and
// expiry. Unknown and expired tokens fail identically.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.userForResetToken(ctx, token)
	return err
}

// ResetPassword sets the new password, clears the reset-token fields and
// revokes every refresh token the user holds, forcing re-login everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput, ip string) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	u, err := s.userForResetToken(ctx, in.Token)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return apperr.Internal("password hashing failed", err)
	}
	if _, err := s.users.Update(ctx, u.ID, map[string]any{
		"password_hash":      hash,
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
	}); err != nil {
		return err
	}
	if _, err := s.tokens.RevokeAllForUser(ctx, u.ID, ip); err != nil {
		return err
	}
	s.bus.Emit(ctx, events.PasswordResetDone, map[string]any{"user_id": u.ID})
	s.lg.Infow("password reset completed", "user_id", u.ID)
	return nil
}

func (s *AuthService) userForResetToken(ctx context.Context, token string) (*models.User, error) {
	u, err := s.users.FindByResetTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		return nil, err
	}
	if u == nil || u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(s.now()) {
		return nil, apperr.Unauthorized("invalid or expired reset token")
	}
	return u, nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, userID uint, ip string) (*models.RefreshToken, error) {
	raw, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperr.Internal("token generation failed", err)
	}
	t := &models.RefreshToken{
		Token:       raw,
		UserID:      userID,
		ExpiresAt:   s.now().Add(s.cfg.RefreshTTL),
		CreatedAt:   s.now(),
		CreatedByIP: ip,
	}
	if err := s.tokens.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
