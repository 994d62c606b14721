// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/hitoshi/pizzauth/internal/auth"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// DefaultEnvFile は起動時に読み込む.envファイルのパス。
const DefaultEnvFile = ".env"

const environmentProduction = "production"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database（--in-memory指定時は不要）
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Token
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	TokenIssuer string        `envconfig:"TOKEN_ISSUER" default:"pizzauth"`

	// Password
	BcryptCost        int `envconfig:"BCRYPT_COST" default:"10"`
	PasswordMinLength int `envconfig:"PASSWORD_MIN_LENGTH" default:"8"`

	// Server (CORS_ALLOWED_ORIGINはカンマ区切りで複数指定可、"*"は全許可)
	ServerPort        string `envconfig:"SERVER_PORT" default:"8080"`
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`
	Environment       string `envconfig:"ENVIRONMENT" default:"development"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load は.envファイル（存在する場合）と環境変数からConfigを読み込み、検証する。
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom は指定された.envファイルを読み込んだうえで環境変数からConfigを生成する。
// 既に設定されている環境変数は.envファイルの値で上書きしない。
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate は設定値の範囲を検証する。
func (c *Config) Validate() error {
	if len(c.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", auth.MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.PasswordMinLength < 1 || c.PasswordMinLength > 72 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be between 1 and 72, got %d", c.PasswordMinLength)
	}
	return nil
}

// RequireDatabaseURL はDATABASE_URLが設定されていることを確認する。
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return errors.New("required environment variables are not set: [DATABASE_URL]")
	}
	return nil
}

// IsProduction は本番環境として起動しているかを返す。
func (c *Config) IsProduction() bool {
	return c.Environment == environmentProduction
}

// PasswordPolicy は設定から登録時のパスワード強度ポリシーを生成する。
func (c *Config) PasswordPolicy() auth.PasswordPolicy {
	policy := auth.DefaultPasswordPolicy()
	policy.MinLength = c.PasswordMinLength
	return policy
}
