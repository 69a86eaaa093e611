// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Session credential signing (tokens issued by the federation flow and
	// verified on every authenticated request).
	TokenSecret   string `mapstructure:"TOKEN_SECRET"`
	TokenIssuer   string `mapstructure:"TOKEN_ISSUER"`
	TokenAudience string `mapstructure:"TOKEN_AUDIENCE"`
	// TokenTTLMinutes is the lifetime of issued session credentials.
	TokenTTLMinutes int `mapstructure:"TOKEN_TTL_MINUTES"`

	// Kakao OAuth application credentials.
	KakaoClientID     string `mapstructure:"KAKAO_REST_API_KEY"`
	KakaoClientSecret string `mapstructure:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURI  string `mapstructure:"KAKAO_REDIRECT_URI"`
	// KakaoLinkByEmail enables linking Kakao logins to existing accounts by
	// verified email. Kakao does not reliably expose verified email, so this
	// defaults to off.
	KakaoLinkByEmail bool `mapstructure:"KAKAO_LINK_BY_EMAIL"`

	// Naver OAuth application credentials.
	NaverClientID     string `mapstructure:"NAVER_CLIENT_ID"`
	NaverClientSecret string `mapstructure:"NAVER_CLIENT_SECRET"`
	NaverRedirectURI  string `mapstructure:"NAVER_REDIRECT_URI"`
	NaverLinkByEmail  bool   `mapstructure:"NAVER_LINK_BY_EMAIL"`

	// ViewDedupMinutes is the window within which repeat views from the same
	// viewer (or IP) are not counted again.
	ViewDedupMinutes int `mapstructure:"VIEW_DEDUP_MINUTES"`

	// Tracing
	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// TokenTTL returns the session credential lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// ViewDedupWindow returns the view dedup window as a duration.
func (c *Config) ViewDedupWindow() time.Duration {
	return time.Duration(c.ViewDedupMinutes) * time.Minute
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			log.Printf("No profile-specific config 'config.%s.yml' found, using base config", env)
		}
	}

	// Development defaults
	viper.SetDefault("PORT", "4000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "moeum")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	viper.SetDefault("TOKEN_SECRET", "dev-secret-change-in-production")
	viper.SetDefault("TOKEN_ISSUER", "moeum-api")
	viper.SetDefault("TOKEN_AUDIENCE", "moeum-client")
	viper.SetDefault("TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("KAKAO_REDIRECT_URI", "http://localhost:3000/auth/kakao/callback")
	viper.SetDefault("KAKAO_LINK_BY_EMAIL", false)
	viper.SetDefault("NAVER_REDIRECT_URI", "http://localhost:3000/auth/naver/callback")
	viper.SetDefault("NAVER_LINK_BY_EMAIL", true)
	viper.SetDefault("VIEW_DEDUP_MINUTES", 30)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	if isProduction {
		if c.TokenSecret == "dev-secret-change-in-production" {
			return errors.New("TOKEN_SECRET must be changed from the default value in production")
		}
		if len(c.TokenSecret) < 32 {
			return errors.New("TOKEN_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.KakaoClientID == "" && c.NaverClientID == "" {
			return errors.New("at least one OAuth provider must be configured in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.TokenSecret) < 32 {
			log.Println("WARNING: TOKEN_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
