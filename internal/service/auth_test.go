package service

import (
	"context"
	"testing"
	"time"

	"bizcore/internal/apperr"
	"bizcore/internal/auth"
	"bizcore/internal/events"
	"bizcore/internal/models"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	res, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.ID != u.ID || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("incomplete response: %+v", res)
	}
	if res.ExpiresIn != (15 * time.Minute).Milliseconds() {
		t.Fatalf("unexpected expiresIn %d", res.ExpiresIn)
	}
	if res.User.Email != "ada@example.com" {
		t.Fatalf("response should carry the public user: %+v", res.User)
	}

	claims, err := auth.VerifyAccessToken("test-secret", res.AccessToken)
	if err != nil {
		t.Fatalf("access token should verify: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored, err := env.tokens.Get(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("get refresh: %v", err)
	}
	if stored == nil || !stored.IsActive(time.Now()) || stored.CreatedByIP != "10.0.0.1" {
		t.Fatalf("refresh token not persisted correctly: %+v", stored)
	}

	fresh, err := env.users.FindByID(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.LastLoginAt == nil {
		t.Fatalf("last login should be stamped")
	}
}

// The three rejection reasons must be indistinguishable from outside.
func TestLoginFailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)
	env.seedUser(t, "gone@example.com", "password123", models.RoleEmployee, models.StatusSuspended)

	attempts := []LoginInput{
		{Email: "nobody@example.com", Password: "password123"},
		{Email: "ada@example.com", Password: "wrongpassword"},
		{Email: "gone@example.com", Password: "password123"},
	}
	var messages []string
	for _, in := range attempts {
		_, err := svc.Login(ctx, in, "")
		if !apperr.IsKind(err, apperr.KindUnauthorized) {
			t.Fatalf("login %s: expected unauthorized, got %v", in.Email, err)
		}
		messages = append(messages, apperr.From(err).Message)
	}
	if messages[0] != messages[1] || messages[1] != messages[2] {
		t.Fatalf("rejection messages must not leak the reason: %v", messages)
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	_, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email"}, "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(apperr.From(err).Fields) != 2 {
		t.Fatalf("expected bad email and missing password reported together: %v", apperr.From(err).Fields)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	login, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	res, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}, "10.0.0.2")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.RefreshToken == login.RefreshToken {
		t.Fatalf("rotation should mint a new refresh token")
	}

	old, err := env.tokens.Get(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if !old.IsRevoked || old.ReplacedByToken != res.RefreshToken {
		t.Fatalf("old token should be revoked and chained: %+v", old)
	}

	// The consumed token cannot be replayed.
	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("replay of rotated token should fail, got %v", err)
	}
	// The replacement works.
	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: res.RefreshToken}, ""); err != nil {
		t.Fatalf("refresh with replacement: %v", err)
	}
}

func TestRefreshWithoutRotationReusesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, false)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	login, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	res, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}, "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.RefreshToken != login.RefreshToken {
		t.Fatalf("without rotation the token must be reused")
	}
	stored, err := env.tokens.Get(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.IsRevoked {
		t.Fatalf("token must stay live without rotation")
	}
}

func TestRefreshRejectsUnknownAndExpired(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: "unknown"}, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("unknown token: expected unauthorized, got %v", err)
	}

	expired := models.RefreshToken{Token: "expired", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := env.tokens.Save(ctx, &expired); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: "expired"}, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expired token: expected unauthorized, got %v", err)
	}
}

func TestRefreshForInactiveUserRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	login, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := env.users.Update(ctx, u.ID, map[string]any{"status": models.StatusSuspended}); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	stored, err := env.tokens.Get(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IsRevoked {
		t.Fatalf("token of a suspended account should be closed out")
	}
}

func TestLogoutSingleDevice(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	first, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("login 1: %v", err)
	}
	second, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("login 2: %v", err)
	}

	if err := svc.Logout(ctx, u.ID, first.RefreshToken, "10.0.0.9"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	t1, _ := env.tokens.Get(ctx, first.RefreshToken)
	t2, _ := env.tokens.Get(ctx, second.RefreshToken)
	if !t1.IsRevoked {
		t.Fatalf("logged-out session should be revoked")
	}
	if t2.IsRevoked {
		t.Fatalf("other session must survive a single-device logout")
	}
}

func TestLogoutAllSessions(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "password123"}, ""); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}
	if err := svc.Logout(ctx, u.ID, "", ""); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	n, err := env.tokens.ActiveCountForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no live sessions, got %d", n)
	}
}

func TestLogoutIgnoresForeignToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)
	victim := env.seedUser(t, "bob@example.com", "password123", models.RoleEmployee, models.StatusActive)

	login, err := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	// A caller presenting someone else's token gets a silent no-op.
	if err := svc.Logout(ctx, victim.ID+100, login.RefreshToken, ""); err != nil {
		t.Fatalf("foreign logout must not error: %v", err)
	}
	stored, _ := env.tokens.Get(ctx, login.RefreshToken)
	if stored.IsRevoked {
		t.Fatalf("foreign logout must not revoke the token")
	}
	// So does an unknown token.
	if err := svc.Logout(ctx, victim.ID, "no-such-token", ""); err != nil {
		t.Fatalf("unknown token logout must not error: %v", err)
	}
}

func TestForgotPasswordIsSilentForUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	if err := svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "nobody@example.com"}); err != nil {
		t.Fatalf("unknown email must look like success: %v", err)
	}
}

func captureResetToken(t *testing.T, env *testEnv) <-chan string {
	t.Helper()
	ch := make(chan string, 1)
	env.bus.On(events.PasswordResetRequested, func(ctx context.Context, ev events.Event) error {
		payload, ok := ev.Payload.(map[string]any)
		if !ok {
			t.Errorf("unexpected payload %T", ev.Payload)
			return nil
		}
		ch <- payload["token"].(string)
		return nil
	})
	return ch
}

func TestForgotPasswordMintsUsableToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)
	ch := captureResetToken(t, env)

	if err := svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "ada@example.com"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	env.bus.Wait()
	raw := <-ch
	if raw == "" {
		t.Fatalf("expected a raw token in the event")
	}

	if err := svc.ValidateResetToken(ctx, raw); err != nil {
		t.Fatalf("minted token should validate: %v", err)
	}
	if err := svc.ValidateResetToken(ctx, "wrong"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("bogus token should fail, got %v", err)
	}

	// Only the hash is at rest.
	fresh, err := env.users.FindByID(ctx, u.ID, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.ResetTokenHash == nil || *fresh.ResetTokenHash == raw {
		t.Fatalf("raw token must never be stored")
	}
	if fresh.ResetTokenHash != nil && *fresh.ResetTokenHash != auth.HashToken(raw) {
		t.Fatalf("stored hash should match the minted token")
	}
}

func TestResetPasswordRevokesSessionsAndConsumesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com", "oldpassword", models.RoleAdmin, models.StatusActive)
	ch := captureResetToken(t, env)

	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "oldpassword"}, ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "ada@example.com"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	env.bus.Wait()
	raw := <-ch

	in := ResetPasswordInput{Token: raw, Password: "newpassword1", ConfirmPassword: "newpassword1"}
	if err := svc.ResetPassword(ctx, in, "10.0.0.5"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	n, err := env.tokens.ActiveCountForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("reset must revoke every session, got %d live", n)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "oldpassword"}, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("old password should be dead, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "newpassword1"}, ""); err != nil {
		t.Fatalf("new password should work: %v", err)
	}

	// Single use.
	if err := svc.ResetPassword(ctx, in, ""); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("token reuse should fail, got %v", err)
	}
}

func TestResetPasswordMismatchedConfirmation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	err := svc.ResetPassword(context.Background(), ResetPasswordInput{
		Token: "x", Password: "newpassword1", ConfirmPassword: "different1",
	}, "")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	env := newTestEnv(t)
	svc := env.authService(t, true)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com", "password123", models.RoleAdmin, models.StatusActive)
	ch := captureResetToken(t, env)

	if err := svc.ForgotPassword(ctx, ForgotPasswordInput{Email: "ada@example.com"}); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	env.bus.Wait()
	raw := <-ch

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if err := svc.ValidateResetToken(ctx, raw); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expired token should fail, got %v", err)
	}
}
