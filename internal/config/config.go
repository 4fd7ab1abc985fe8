package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration
	SessionCacheTTL time.Duration
	PasswordPepper  string

	HTTPAddress      string
	BaseURL          string
	AllowedOrigins   []string
	AllowCredentials bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3BaseURL   string
}

var envKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"JWT_SECRET",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "EMAIL_TOKEN_TTL", "SESSION_CACHE_TTL",
	"PASSWORD_PEPPER",
	"HTTP_ADDRESS", "BASE_URL", "ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
	"MAIL_FROM", "MAIL_FROM_NAME",
	"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BASE_URL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("ACCESS_TOKEN_TTL", "1h")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("EMAIL_TOKEN_TTL", "168h")
	v.SetDefault("SESSION_CACHE_TTL", "1h")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("MAIL_FROM_NAME", "Rest API Service")
	v.SetDefault("S3_REGION", "us-east-1")

	for _, key := range []string{"DATABASE_URL", "REDIS_ADDRESS", "JWT_SECRET", "PASSWORD_PEPPER"} {
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("required config key %s is not set", key)
		}
	}

	cfg := &Config{
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddress:  v.GetString("REDIS_ADDRESS"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		EmailTokenTTL:   v.GetDuration("EMAIL_TOKEN_TTL"),
		SessionCacheTTL: v.GetDuration("SESSION_CACHE_TTL"),
		PasswordPepper:  v.GetString("PASSWORD_PEPPER"),

		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		BaseURL:          v.GetString("BASE_URL"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		MailFrom:     v.GetString("MAIL_FROM"),
		MailFromName: v.GetString("MAIL_FROM_NAME"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Region:    v.GetString("S3_REGION"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		S3BaseURL:   v.GetString("S3_BASE_URL"),
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}
	if cfg.SessionCacheTTL <= 0 {
		return nil, fmt.Errorf("SESSION_CACHE_TTL must be positive")
	}

	return cfg, nil
}
