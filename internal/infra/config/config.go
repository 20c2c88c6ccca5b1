package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	AccessSecretKey  string
	RefreshSecretKey string
	JWTAlgorithm     string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	Issuer           string
	Audience         string
	PasswordPepper   string

	HTTPAddress   string
	GRPCAddress   string
	HTTPSCertFile string
	HTTPSKeyFile  string

	AllowedOrigins    []string
	AllowCredentials  bool
	RefreshCookieName string
	CookieDomain      string
	CookieSecure      bool

	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	RefreshSingleUse bool

	RateLimitRPS   int
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	ServiceName       string
	OtelEnabled       bool
	OtelCollectorAddr string
}

// TLSEnabled reports whether both certificate files are configured.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("HTTP_ADDRESS", ":8000")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("ALLOWED_ORIGINS", "http://0.0.0.0:3000,http://localhost:3000")
	v.SetDefault("ALLOW_CREDENTIALS", true)
	v.SetDefault("REFRESH_COOKIE_NAME", "refresh_token")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REFRESH_SINGLE_USE", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SERVICE_NAME", "portal-service")
	v.SetDefault("OTEL_ENABLED", false)
}

// Load reads an optional config.json from the working directory and lets
// environment variables override it. The result is not modified afterwards.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("DATABASE_URL"),
		AccessSecretKey:   v.GetString("ACCESS_SECRET_KEY"),
		RefreshSecretKey:  v.GetString("REFRESH_SECRET_KEY"),
		JWTAlgorithm:      strings.ToUpper(v.GetString("JWT_ALGORITHM")),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),
		PasswordPepper:    v.GetString("PASSWORD_PEPPER"),
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		GRPCAddress:       v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:     v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:      v.GetString("HTTPS_KEY_FILE"),
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		RefreshCookieName: v.GetString("REFRESH_COOKIE_NAME"),
		CookieDomain:      v.GetString("COOKIE_DOMAIN"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		RefreshSingleUse:  v.GetBool("REFRESH_SINGLE_USE"),
		RateLimitRPS:      v.GetInt("RATE_LIMIT_RPS"),
		RateLimitBurst:    v.GetInt("RATE_LIMIT_BURST"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		ServiceName:       v.GetString("SERVICE_NAME"),
		OtelEnabled:       v.GetBool("OTEL_ENABLED"),
		OtelCollectorAddr: v.GetString("OTEL_COLLECTOR_ADDR"),
	}

	origins, err := allowedOrigins(v)
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_ORIGINS: %w", err)
	}
	cfg.AllowedOrigins = origins

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return fmt.Errorf("DATABASE_URL is not set")
	case c.AccessSecretKey == "":
		return fmt.Errorf("ACCESS_SECRET_KEY is not set")
	case c.RefreshSecretKey == "":
		return fmt.Errorf("REFRESH_SECRET_KEY is not set")
	case c.AccessSecretKey == c.RefreshSecretKey:
		return fmt.Errorf("ACCESS_SECRET_KEY and REFRESH_SECRET_KEY must differ")
	case c.AccessTokenTTL <= 0:
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %v", c.AccessTokenTTL)
	case c.RefreshTokenTTL <= 0:
		return fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %v", c.RefreshTokenTTL)
	case c.RefreshSingleUse && c.RedisAddress == "":
		return fmt.Errorf("REFRESH_SINGLE_USE requires REDIS_ADDRESS")
	case c.OtelEnabled && c.OtelCollectorAddr == "":
		return fmt.Errorf("OTEL_ENABLED requires OTEL_COLLECTOR_ADDR")
	}
	if _, ok := supportedAlgorithms[c.JWTAlgorithm]; !ok {
		return fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm)
	}
	return nil
}

// allowedOrigins reads ALLOWED_ORIGINS either as a list from config.json or
// as a string from the environment.
func allowedOrigins(v *viper.Viper) ([]string, error) {
	switch v.Get("ALLOWED_ORIGINS").(type) {
	case []any, []string:
		return v.GetStringSlice("ALLOWED_ORIGINS"), nil
	}
	return parseList(v.GetString("ALLOWED_ORIGINS"))
}

// parseList accepts either a JSON array or a comma separated string.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
