package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the board API.
type Config struct {
	Addr      string `env:"ADDR,default=:8080"`
	GinMode   string `env:"GIN_MODE,default=debug"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=console"`

	DBDriver   string `env:"DB_DRIVER,default=mysql"`
	DBHost     string `env:"DB_HOST,default=localhost"`
	DBPort     string `env:"DB_PORT,default=3306"`
	DBUser     string `env:"DB_USER,default=boarduser"`
	DBPassword string `env:"DB_PASSWORD,default=boardpassword"`
	DBName     string `env:"DB_NAME,default=board_collab"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`

	JWTSecret     string        `env:"JWT_SECRET,default=change-me-in-production"`
	JWTTTL        time.Duration `env:"JWT_TTL,default=24h"`
	SessionSecret string        `env:"SESSION_SECRET,default=default-secret-key-change-me"`
	RedisAddr     string        `env:"REDIS_ADDR"`

	FrontendURL   string        `env:"FRONTEND_URL,default=http://localhost:3000"`
	InvitationTTL time.Duration `env:"INVITATION_TTL,default=168h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	FromEmail    string `env:"FROM_EMAIL,default=noreply@boards.example.com"`
	FromName     string `env:"FROM_NAME,default=Boards"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.InvitationTTL <= 0 {
		return fmt.Errorf("INVITATION_TTL must be positive")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost,
			c.DBPort,
			c.DBUser,
			c.DBPassword,
			c.DBName,
			c.DBSSLMode,
		)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
