package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type AdminConfig struct {
	Password    string
	MaxAttempts int
	LockoutTime time.Duration
	SessionTTL  time.Duration
}

// ShopConfig carries the shop identity printed on receipts and embedded in
// outbound customer messages.
type ShopConfig struct {
	Name        string
	Address     string
	Phone       string
	Hours       string
	CountryCode string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Admin       AdminConfig
	Shop        ShopConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Admin: AdminConfig{
			Password:    v.GetString("ADMIN_PASSWORD"),
			MaxAttempts: v.GetInt("ADMIN_MAX_ATTEMPTS"),
			LockoutTime: v.GetDuration("ADMIN_LOCKOUT_TIME"),
			SessionTTL:  v.GetDuration("ADMIN_SESSION_TTL"),
		},
		Shop: ShopConfig{
			Name:        v.GetString("SHOP_NAME"),
			Address:     v.GetString("SHOP_ADDRESS"),
			Phone:       v.GetString("SHOP_PHONE"),
			Hours:       v.GetString("SHOP_HOURS"),
			CountryCode: v.GetString("SHOP_COUNTRY_CODE"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Admin.MaxAttempts == 0 {
		cfg.Admin.MaxAttempts = 3
	}
	if cfg.Admin.LockoutTime == 0 {
		cfg.Admin.LockoutTime = 5 * time.Minute
	}
	if cfg.Admin.SessionTTL == 0 {
		cfg.Admin.SessionTTL = 10 * time.Minute
	}
	if cfg.Shop.Hours == "" {
		cfg.Shop.Hours = "10 AM - 10 PM (All Days)"
	}
	if cfg.Shop.CountryCode == "" {
		cfg.Shop.CountryCode = "91"
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.Shop.Name == "" {
		return fmt.Errorf("SHOP_NAME is required")
	}
	return nil
}
