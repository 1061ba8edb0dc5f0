package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr     string
	CookieSecure bool

	// TenantPrefix namespaces session identifiers when several logical
	// stores share one Sift account.
	TenantPrefix string

	// SiftJSKey and SiftAPIKey are deployment-level constants. When set they
	// take precedence over the values kept in the settings store.
	SiftJSKey   string
	SiftAPIKey  string
	SiftBaseURL string

	StoreCurrency string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"
	if !cookieSecure {
		cookieSecure = getenvBool("SESSION_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "siftbridge"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		CookieSecure: cookieSecure,

		TenantPrefix: getenv("TENANT_PREFIX", "wp_"),

		SiftJSKey:   strings.TrimSpace(getenv("SIFT_JS_KEY", "")),
		SiftAPIKey:  strings.TrimSpace(getenv("SIFT_API_KEY", "")),
		SiftBaseURL: strings.TrimSpace(getenv("SIFT_BASE_URL", "")),

		StoreCurrency: getenv("STORE_CURRENCY", "USD"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       int(getenvInt64("REDIS_DB", 0)),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "siftbridge"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
