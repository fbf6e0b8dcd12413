package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config carries every environment-derived setting the application consumes.
// Token TTLs are kept as strings because they use the s/m/h/d suffix format
// (see auth.ParseExpiry); everything else is typed by cleanenv.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	HTTPPort string `env:"HTTP_PORT" env-default:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret       string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	AccessTokenTTL  string `env:"JWT_ACCESS_EXPIRES" env-default:"15m"`
	RefreshTokenTTL string `env:"JWT_REFRESH_EXPIRES" env-default:"7d"`
	RotateRefresh   bool   `env:"JWT_REFRESH_ROTATE" env-default:"true"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	AMQPURL       string `env:"AMQP_URL"`

	LoginRateCapacity int `env:"LOGIN_RATE_CAPACITY" env-default:"10"`
	LoginRateWindowMS int `env:"LOGIN_RATE_WINDOW_MS" env-default:"60000"`
}

// Load reads .env (best effort) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
