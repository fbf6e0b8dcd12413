package handlers

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"bizcore/internal/auth"
	"bizcore/internal/service"
)

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func Login(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.LoginInput
		if !decodeBody(w, r, &in) {
			return
		}
		resp, err := svc.Login(r.Context(), in, clientIP(r))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, resp)
	}
}

func Refresh(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.RefreshInput
		if !decodeBody(w, r, &in) {
			return
		}
		resp, err := svc.Refresh(r.Context(), in, clientIP(r))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, resp)
	}
}

func Logout(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		// Body is optional: no token means "log out everywhere".
		_ = decodeOptional(r, &in)
		if err := svc.Logout(r.Context(), auth.Subject(r.Context()), in.RefreshToken, clientIP(r)); err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "logged out")
	}
}

func ForgotPassword(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.ForgotPasswordInput
		if !decodeBody(w, r, &in) {
			return
		}
		if err := svc.ForgotPassword(r.Context(), in); err != nil {
			respondError(w, lg, r, err)
			return
		}
		// Identical response whether or not the account exists.
		respondMessage(w, http.StatusOK, "if the account exists, a reset link has been sent")
	}
}

func ValidateResetToken(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Token string `json:"token"`
		}
		if !decodeBody(w, r, &in) {
			return
		}
		if err := svc.ValidateResetToken(r.Context(), in.Token); err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "token is valid")
	}
}

func ResetPassword(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.ResetPasswordInput
		if !decodeBody(w, r, &in) {
			return
		}
		if err := svc.ResetPassword(r.Context(), in, clientIP(r)); err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "password has been reset")
	}
}

// Me returns the authenticated user's public profile.
func Me(users *service.UserService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, r, err)
			return
		}
		respondData(w, http.StatusOK, u)
	}
}
