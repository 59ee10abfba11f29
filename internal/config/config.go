package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPAddr  string
	GRPCAddr  string
	LogLevel  string
	LogFormat string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisDB       int
	ReturnLockTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxStuckAfter   time.Duration

	CarrierBaseURL          string
	CarrierToken            string
	CarrierTimeout          time.Duration
	CarrierWarehousePincode string

	PaymentBaseURL   string
	PaymentKeyID     string
	PaymentKeySecret string
	PaymentTimeout   time.Duration

	ReturnWindowDays      int
	ReturnCategoryWindows map[string]int
	ReturnMinOrderAmount  decimal.Decimal

	PickupFallbackDays int
	PickupFallbackSlot string

	AdminUsername string
	AdminPassword string
}

// DSN builds the pgx connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// CarrierEnabled reports whether carrier credentials are configured.
func (c Config) CarrierEnabled() bool {
	return c.CarrierBaseURL != "" && c.CarrierToken != ""
}

func (c Config) PaymentEnabled() bool {
	return c.PaymentBaseURL != "" && c.PaymentKeyID != "" && c.PaymentKeySecret != ""
}

// Load reads an optional .env file and then the environment. Unset keys take
// their defaults; malformed values are errors.
func Load() (Config, error) {
	loadEnv()

	cfg := Config{
		HTTPAddr:                getEnv("HTTP_ADDR", ":9000"),
		GRPCAddr:                getEnv("GRPC_ADDR", ":50051"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBUser:                  getEnv("POSTGRES_USER", "postgres"),
		DBPassword:              getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:                  getEnv("POSTGRES_DB", "returns"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		KafkaBrokers:            splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:              getEnv("KAFKA_TOPIC", "return_events"),
		KafkaGroupID:            getEnv("KAFKA_GROUP_ID", "return-events-consumer-group"),
		CarrierBaseURL:          getEnv("CARRIER_BASE_URL", ""),
		CarrierToken:            getEnv("CARRIER_API_TOKEN", ""),
		CarrierWarehousePincode: getEnv("CARRIER_WAREHOUSE_PINCODE", ""),
		PaymentBaseURL:          getEnv("PAYMENT_BASE_URL", ""),
		PaymentKeyID:            getEnv("PAYMENT_KEY_ID", ""),
		PaymentKeySecret:        getEnv("PAYMENT_KEY_SECRET", ""),
		PickupFallbackSlot:      getEnv("PICKUP_FALLBACK_SLOT", "10:00-18:00"),
		AdminUsername:           getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:           getEnv("ADMIN_PASSWORD", ""),
	}

	var errs []error
	intVar := func(dst *int, key string, fallback, lower int) {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		if v < lower {
			errs = append(errs, fmt.Errorf("%s must be >= %d", key, lower))
			return
		}
		*dst = v
	}
	durationVar := func(dst *time.Duration, key string, fallback int, unit time.Duration) {
		var n int
		intVar(&n, key, fallback, 1)
		*dst = time.Duration(n) * unit
	}

	intVar(&cfg.DBPort, "DB_PORT", 5432, 1)
	intVar(&cfg.RedisDB, "REDIS_DB", 0, 0)
	durationVar(&cfg.ReturnLockTTL, "RETURN_LOCK_TTL_SEC", 30, time.Second)
	durationVar(&cfg.OutboxPollInterval, "OUTBOX_POLL_INTERVAL_MS", 1000, time.Millisecond)
	intVar(&cfg.OutboxBatchSize, "OUTBOX_BATCH_SIZE", 10, 1)
	intVar(&cfg.OutboxMaxAttempts, "OUTBOX_MAX_ATTEMPTS", 5, 1)
	durationVar(&cfg.OutboxStuckAfter, "OUTBOX_STUCK_AFTER_SEC", 60, time.Second)
	durationVar(&cfg.CarrierTimeout, "CARRIER_TIMEOUT_SEC", 10, time.Second)
	durationVar(&cfg.PaymentTimeout, "PAYMENT_TIMEOUT_SEC", 15, time.Second)
	intVar(&cfg.ReturnWindowDays, "RETURN_WINDOW_DAYS", 7, 0)
	intVar(&cfg.PickupFallbackDays, "PICKUP_FALLBACK_DAYS", 2, 1)

	minAmount, err := decimal.NewFromString(getEnv("RETURN_MIN_ORDER_AMOUNT", "100"))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid RETURN_MIN_ORDER_AMOUNT: %w", err))
	case minAmount.IsNegative():
		errs = append(errs, errors.New("RETURN_MIN_ORDER_AMOUNT must be >= 0"))
	default:
		cfg.ReturnMinOrderAmount = minAmount
	}

	windows, err := parseCategoryWindows(getEnv("RETURN_CATEGORY_WINDOWS", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RETURN_CATEGORY_WINDOWS: %w", err))
	}
	cfg.ReturnCategoryWindows = windows

	if cfg.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC must not be empty"))
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT %q, want console or json", cfg.LogFormat))
	}
	if !validSlot(cfg.PickupFallbackSlot) {
		errs = append(errs, fmt.Errorf("invalid PICKUP_FALLBACK_SLOT %q, want HH:MM-HH:MM", cfg.PickupFallbackSlot))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnv looks for .env in the working directory and its two parents, so
// binaries started from cmd/<name> still pick up the repository file.
func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		path := filepath.Join(wd, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		wd = filepath.Dir(wd)
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseCategoryWindows parses "rings:14,watches:3".
func parseCategoryWindows(value string) (map[string]int, error) {
	out := make(map[string]int)
	for _, pair := range splitCSV(value) {
		category, days, ok := strings.Cut(pair, ":")
		category = strings.TrimSpace(category)
		if !ok || category == "" {
			return nil, fmt.Errorf("entry %q is not category:days", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("entry %q has invalid days", pair)
		}
		out[category] = n
	}
	return out, nil
}

func validSlot(slot string) bool {
	from, to, ok := strings.Cut(slot, "-")
	if !ok {
		return false
	}
	start, err := time.Parse("15:04", from)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", to)
	if err != nil {
		return false
	}
	return end.After(start)
}
