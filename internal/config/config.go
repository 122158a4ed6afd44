package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	EmailDriverSMTP = "smtp"
	EmailDriverLog  = "log"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv        string `env:"APP_ENV" envDefault:"production"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	JWTPrivateKey        string `env:"JWT_PRIVATE_KEY,required,notEmpty"`
	JWTTTLMinutes        int    `env:"JWT_TTL_MINUTES" envDefault:"10080"`
	BcryptCost           int    `env:"BCRYPT_COST" envDefault:"10"`
	HashConcurrency      int    `env:"HASH_CONCURRENCY" envDefault:"0"`
	ResetCodeTTLMinutes  int    `env:"RESET_CODE_TTL_MINUTES" envDefault:"15"`
	ResetTokenTTLMinutes int    `env:"RESET_TOKEN_TTL_MINUTES" envDefault:"15"`
	DefaultAvatarURL     string `env:"DEFAULT_AVATAR_URL" envDefault:"https://i.imgur.com/9NYgErP.png"`

	EmailDriver  string `env:"EMAIL_DRIVER" envDefault:"smtp"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AuthRateLimit           int `env:"AUTH_RATE_LIMIT" envDefault:"15"`
	AuthRateWindowMinutes   int `env:"AUTH_RATE_WINDOW_MINUTES" envDefault:"15"`
	GlobalRateLimit         int `env:"GLOBAL_RATE_LIMIT" envDefault:"100"`
	GlobalRateWindowMinutes int `env:"GLOBAL_RATE_WINDOW_MINUTES" envDefault:"15"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que las etiquetas no pueden expresar.
func (c *Config) Validate() error {
	var errs []error
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.JWTTTLMinutes < 0 {
		errs = append(errs, errors.New("JWT_TTL_MINUTES must not be negative"))
	}
	if c.ResetCodeTTLMinutes <= 0 {
		errs = append(errs, errors.New("RESET_CODE_TTL_MINUTES must be positive"))
	}
	if c.ResetTokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL_MINUTES must be positive"))
	}

	switch strings.ToLower(strings.TrimSpace(c.EmailDriver)) {
	case EmailDriverSMTP:
		if strings.TrimSpace(c.SMTPHost) == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when EMAIL_DRIVER=smtp"))
		}
		if strings.TrimSpace(c.SMTPFrom) == "" {
			errs = append(errs, errors.New("SMTP_FROM is required when EMAIL_DRIVER=smtp"))
		}
	case EmailDriverLog:
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_DRIVER %q", c.EmailDriver))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c *Config) ResetCodeTTL() time.Duration {
	return time.Duration(c.ResetCodeTTLMinutes) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

func (c *Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowMinutes) * time.Minute
}

func (c *Config) GlobalRateWindow() time.Duration {
	return time.Duration(c.GlobalRateWindowMinutes) * time.Minute
}
