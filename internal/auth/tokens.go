package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiry is used when a TTL string is missing or has an unknown unit.
const DefaultExpiry = 15 * time.Minute

// ParseExpiry converts a TTL string with an s/m/h/d unit suffix into a
// duration. "7d", "15m", "30s", "12h" are all valid. Anything else falls
// back to DefaultExpiry.
func ParseExpiry(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return DefaultExpiry
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return DefaultExpiry
	}
	switch s[len(s)-1] {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return DefaultExpiry
	}
}

// SignAccessToken mints a short-lived HS256 JWT embedding the user's
// identity and role.
func SignAccessToken(secret string, userID uint, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"email": email,
		"role":  role,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAccessToken validates signature and expiry and extracts the claims.
func VerifyAccessToken(secret, tokenStr string) (Claims, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return Claims{}, errors.New("invalid subject")
	}
	email, _ := mapc["email"].(string)
	role, _ := mapc["role"].(string)
	return Claims{UserID: uint(uid), Email: email, Role: role}, nil
}

// NewOpaqueToken returns a cryptographically random hex string. Used for
// refresh tokens and password-reset tokens.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("opaque token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 of a token. Reset tokens are stored only
// as hashes so a leaked users table cannot be replayed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
