package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL != "15m" || cfg.RefreshTokenTTL != "7d" {
		t.Fatalf("unexpected token defaults: %+v", cfg)
	}
	if !cfg.RotateRefresh {
		t.Fatalf("rotation should default on")
	}
	if cfg.LoginRateCapacity != 10 || cfg.LoginRateWindowMS != 60000 {
		t.Fatalf("unexpected rate-limit defaults: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("JWT_REFRESH_ROTATE", "false")
	t.Setenv("LOGIN_RATE_CAPACITY", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.HTTPPort != "9090" {
		t.Fatalf("environment not honored: %+v", cfg)
	}
	if cfg.JWTSecret != "super-secret" {
		t.Fatalf("secret not read")
	}
	if cfg.RotateRefresh {
		t.Fatalf("rotation flag not read")
	}
	if cfg.LoginRateCapacity != 3 {
		t.Fatalf("capacity not read: %d", cfg.LoginRateCapacity)
	}
}
