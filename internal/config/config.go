package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	PolicyUniformLot  = "uniform_lot"
	PolicyPartialFill = "partial_fill"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string // SENDINBLUE_API_KEY for allotment emails (Brevo)
	MailFrom            string
	StompAddr           string // empty disables the broker sink
	StompDestination    string

	Allotment     AllotmentConfig
	FeeRate       decimal.Decimal
	InitialCash   decimal.Decimal
	Notifications NotificationConfig
}

// AllotmentConfig selects the allotment strategy and its constants.
type AllotmentConfig struct {
	Policy          string
	LotSize         int
	MaxPerApplicant int
	Cron            string
	Seed            int64
}

type NotificationConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

func init() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STOMP_DESTINATION", "/queue/notifications")
	viper.SetDefault("ALLOTMENT_POLICY", PolicyUniformLot)
	viper.SetDefault("ALLOTMENT_LOT_SIZE", 10)
	viper.SetDefault("ALLOTMENT_MAX_PER_APPLICANT", 20)
	viper.SetDefault("ALLOTMENT_CRON", "0 0 */4 * * *")
	viper.SetDefault("ALLOTMENT_SEED", 0)
	viper.SetDefault("TRADING_FEE_RATE", "0.01")
	viper.SetDefault("INITIAL_CASH", "100000")
	viper.SetDefault("NOTIFY_MAX_ATTEMPTS", 5)
	viper.SetDefault("NOTIFY_RETRY_DELAY", "2s")
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	feeRate, err := decimal.NewFromString(viper.GetString("TRADING_FEE_RATE"))
	if err != nil {
		return nil, fmt.Errorf("TRADING_FEE_RATE: %w", err)
	}
	initialCash, err := decimal.NewFromString(viper.GetString("INITIAL_CASH"))
	if err != nil {
		return nil, fmt.Errorf("INITIAL_CASH: %w", err)
	}

	cfg := &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		StompAddr:           viper.GetString("STOMP_ADDR"),
		StompDestination:    viper.GetString("STOMP_DESTINATION"),
		Allotment: AllotmentConfig{
			Policy:          strings.ToLower(strings.TrimSpace(viper.GetString("ALLOTMENT_POLICY"))),
			LotSize:         viper.GetInt("ALLOTMENT_LOT_SIZE"),
			MaxPerApplicant: viper.GetInt("ALLOTMENT_MAX_PER_APPLICANT"),
			Cron:            viper.GetString("ALLOTMENT_CRON"),
			Seed:            viper.GetInt64("ALLOTMENT_SEED"),
		},
		FeeRate:     feeRate,
		InitialCash: initialCash,
		Notifications: NotificationConfig{
			MaxAttempts: viper.GetInt("NOTIFY_MAX_ATTEMPTS"),
			RetryDelay:  viper.GetDuration("NOTIFY_RETRY_DELAY"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the allotment engine and trading cannot run with.
func (c *Config) Validate() error {
	switch c.Allotment.Policy {
	case PolicyUniformLot, PolicyPartialFill:
	default:
		return fmt.Errorf("ALLOTMENT_POLICY: unknown policy %q", c.Allotment.Policy)
	}
	if c.Allotment.LotSize <= 0 {
		return fmt.Errorf("ALLOTMENT_LOT_SIZE must be positive, got %d", c.Allotment.LotSize)
	}
	if c.Allotment.MaxPerApplicant < c.Allotment.LotSize {
		return fmt.Errorf("ALLOTMENT_MAX_PER_APPLICANT (%d) must be at least ALLOTMENT_LOT_SIZE (%d)", c.Allotment.MaxPerApplicant, c.Allotment.LotSize)
	}
	if c.FeeRate.IsNegative() {
		return fmt.Errorf("TRADING_FEE_RATE must not be negative")
	}
	if c.InitialCash.IsNegative() {
		return fmt.Errorf("INITIAL_CASH must not be negative")
	}
	if c.Notifications.MaxAttempts <= 0 {
		c.Notifications.MaxAttempts = 1
	}
	return nil
}
