package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CheckoutStrict = "strict"
	CheckoutLegacy = "legacy"

	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	Storage   string
	MongoURI  string
	DBName    string
	DBTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	KafkaBrokers    string
	KafkaOrderTopic string

	CheckoutPolicy   string
	OrderStatusGuard bool

	AdminEmail    string
	AdminPassword string
}

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", slog.Any("err", err))
	}
}

func Load() Config {
	return Config{
		AppEnv:   GetEnv("APP_ENV", "dev"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		Port:     GetEnv("PORT", "8080"),

		Storage:   strings.ToLower(GetEnv("STORAGE", StorageMongo)),
		MongoURI:  GetEnv("MONGO_URI", ""),
		DBName:    GetEnv("DB_NAME", "storefront"),
		DBTimeout: getEnvDuration("DB_TIMEOUT", 5*time.Second),

		JWTSecret: GetEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		RazorpayKeyID:     GetEnv("RAZORPAY_KEY_ID", "test_key"),
		RazorpayKeySecret: GetEnv("RAZORPAY_KEY_SECRET", "test_secret"),
		RazorpayBaseURL:   GetEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),

		KafkaBrokers:    GetEnv("KAFKA_BROKERS", ""),
		KafkaOrderTopic: GetEnv("KAFKA_ORDER_TOPIC", "orders"),

		CheckoutPolicy:   strings.ToLower(GetEnv("CHECKOUT_POLICY", CheckoutStrict)),
		OrderStatusGuard: getEnvBool("ORDER_STATUS_GUARD", true),

		AdminEmail:    GetEnv("ADMIN_EMAIL", ""),
		AdminPassword: GetEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate rejects enum settings that Load passed through unchecked.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	switch c.CheckoutPolicy {
	case CheckoutStrict, CheckoutLegacy:
	default:
		return fmt.Errorf("unknown CHECKOUT_POLICY %q", c.CheckoutPolicy)
	}
	return nil
}

func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
