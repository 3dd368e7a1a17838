package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName     string
	Env             string
	LogLevel        string
	LogFile         string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	ShippingCost decimal.Decimal
	Location     *time.Location

	RateLimitRPS   float64
	RateLimitBurst int

	Discord Discord
	Cart    Cart
	SMTP    SMTP

	PaymentDelay time.Duration
	BcryptCost   int
}

type Discord struct {
	WebhookURL    string
	MaxAttempts   int
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

type Cart struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Load reads an optional .env file from the working directory, then the environment.
// A missing .env is not an error; malformed values are.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := &env{lookup: lookup}

	cfg := Config{
		ServiceName:     e.str("SERVICE_NAME", "minishop-storefront"),
		Env:             e.str("ENV", "dev"),
		LogLevel:        e.str("LOG_LEVEL", "info"),
		LogFile:         e.str("LOG_FILE", ""),
		HTTPAddr:        e.str("HTTP_ADDR", ":8080"),
		ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ShippingCost:    e.decimal("SHIPPING_COST", decimal.NewFromInt(50)),
		RateLimitRPS:    e.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst:  e.int("RATE_LIMIT_BURST", 40),
		Discord: Discord{
			WebhookURL:    e.str("DISCORD_WEBHOOK_URL", ""),
			MaxAttempts:   e.int("DISCORD_MAX_ATTEMPTS", 3),
			RatePerSecond: e.float("DISCORD_RATE_PER_SECOND", 0.5),
			Burst:         e.int("DISCORD_BURST", 5),
			Timeout:       e.duration("DISCORD_TIMEOUT", 5*time.Second),
		},
		Cart: Cart{
			Backend:       e.str("CART_BACKEND", "memory"),
			RedisAddr:     e.str("REDIS_ADDR", "localhost:6379"),
			RedisPassword: e.str("REDIS_PASSWORD", ""),
			RedisDB:       e.int("REDIS_DB", 0),
			TTL:           e.duration("CART_TTL", 7*24*time.Hour),
		},
		SMTP: SMTP{
			Host:     e.str("SMTP_HOST", ""),
			Port:     e.str("SMTP_PORT", "587"),
			Username: e.str("SMTP_USER", ""),
			Password: e.str("SMTP_PASS", ""),
			From:     e.str("SMTP_FROM", ""),
		},
		PaymentDelay: e.duration("PAYMENT_DELAY", 0),
		BcryptCost:   e.int("BCRYPT_COST", 10),
	}

	tz := e.str("TIMEZONE", "Asia/Riyadh")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	cfg.Location = loc

	switch cfg.Cart.Backend {
	case "memory", "redis":
	default:
		e.errs = append(e.errs, fmt.Errorf("CART_BACKEND: unknown backend %q", cfg.Cart.Backend))
	}
	if cfg.ShippingCost.IsNegative() {
		e.errs = append(e.errs, errors.New("SHIPPING_COST: must not be negative"))
	}

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (e *env) decimal(key string, def decimal.Decimal) decimal.Decimal {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
