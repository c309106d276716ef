package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Stripe   StripeConfig   `yaml:"stripe"`
	HTTP     HTTPConfig     `yaml:"http"`
	Points   PointsConfig   `yaml:"points"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	AccessExpiry  int    `yaml:"access_expiry_minutes"`
	RefreshExpiry int    `yaml:"refresh_expiry_hours"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
	BaseURL      string `yaml:"base_url"` // link prefix in outgoing mail
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

type HTTPConfig struct {
	RateLimitMax int    `yaml:"rate_limit_max"` // requests per minute per client
	CORSOrigin   string `yaml:"cors_origin"`
}

// PointsConfig holds the gamification accrual constants and claim limits.
type PointsConfig struct {
	Upload                 int `yaml:"upload"`
	Claim                  int `yaml:"claim"`
	ClaimBonus             int `yaml:"claim_bonus"` // awarded to the uploader when their coupon is claimed
	DailyClaimsLimit       int `yaml:"daily_claims_limit"`
	PremiumDailyClaimsFree int `yaml:"premium_daily_claims_limit"`
}

var AppConfig *Config

// LoadConfig reads config.yaml unless DATABASE_URL is set, in which case the
// whole configuration comes from environment variables (container/test mode).
func LoadConfig() {
	var cfg Config

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.AccessExpiry = envInt("JWT_ACCESS_EXPIRY", 60)
	cfg.JWT.RefreshExpiry = envInt("JWT_REFRESH_EXPIRY", 7*24)

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = envInt("REDIS_DB", 0)

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPPort = envInt("SMTP_PORT", 587)
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("SMTP_FROM")
	cfg.Email.FromName = "CouponHub"
	cfg.Email.BaseURL = os.Getenv("APP_BASE_URL")

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.SuccessURL = os.Getenv("STRIPE_SUCCESS_URL")
	cfg.Stripe.CancelURL = os.Getenv("STRIPE_CANCEL_URL")

	cfg.HTTP.RateLimitMax = envInt("RATE_LIMIT_MAX", 120)
	cfg.HTTP.CORSOrigin = os.Getenv("CORS_ORIGIN")

	cfg.Points.Upload = envInt("POINTS_UPLOAD", 10)
	cfg.Points.Claim = envInt("POINTS_CLAIM", 2)
	cfg.Points.ClaimBonus = envInt("POINTS_CLAIM_BONUS", 1)
	cfg.Points.DailyClaimsLimit = envInt("DAILY_CLAIMS_LIMIT", 10)
	cfg.Points.PremiumDailyClaimsFree = envInt("PREMIUM_DAILY_CLAIMS_LIMIT", 50)

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.AccessExpiry == 0 {
		cfg.JWT.AccessExpiry = 60
	}
	if cfg.JWT.RefreshExpiry == 0 {
		cfg.JWT.RefreshExpiry = 7 * 24
	}
	if cfg.HTTP.RateLimitMax == 0 {
		cfg.HTTP.RateLimitMax = 120
	}
	if cfg.Points.Upload == 0 {
		cfg.Points.Upload = 10
	}
	if cfg.Points.Claim == 0 {
		cfg.Points.Claim = 2
	}
	if cfg.Points.DailyClaimsLimit == 0 {
		cfg.Points.DailyClaimsLimit = 10
	}
	if cfg.Points.PremiumDailyClaimsFree == 0 {
		cfg.Points.PremiumDailyClaimsFree = 50
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = "http://localhost:3000"
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
