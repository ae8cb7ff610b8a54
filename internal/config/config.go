package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Payment provider (Lemon Squeezy).  All optional: without an API
	// key the service runs with checkout disabled.
	PaymentAPIKey        string // LEMONSQUEEZY_API_KEY
	PaymentStoreID       string // LEMONSQUEEZY_STORE_ID
	PaymentVariantID     string // LEMONSQUEEZY_VARIANT_ID
	PaymentSigningSecret string // LEMONSQUEEZY_SIGNING_SECRET
	CheckoutSuccessURL   string // CHECKOUT_SUCCESS_URL shown after payment

	// Marketplace tuning.
	BrowsePageSize     int // listings per marketplace page
	AvailabilityWeeks  int // default weeks of availability offered
	PendingExpiryHours int // hours before unpaid bookings are cancelled
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present so local development does not need exported variables.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		PaymentAPIKey:        os.Getenv("LEMONSQUEEZY_API_KEY"),
		PaymentStoreID:       os.Getenv("LEMONSQUEEZY_STORE_ID"),
		PaymentVariantID:     os.Getenv("LEMONSQUEEZY_VARIANT_ID"),
		PaymentSigningSecret: os.Getenv("LEMONSQUEEZY_SIGNING_SECRET"),
		CheckoutSuccessURL:   os.Getenv("CHECKOUT_SUCCESS_URL"),

		BrowsePageSize:     intOr("BROWSE_PAGE_SIZE", 12),
		AvailabilityWeeks:  intOr("AVAILABILITY_WEEKS", 8),
		PendingExpiryHours: intOr("PENDING_EXPIRY_HOURS", 24),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable, falling back to def when the
// variable is unset or malformed.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
