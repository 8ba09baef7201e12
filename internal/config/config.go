package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database and server settings are required;
// payment settings may stay empty in deployments that never initiate
// payments (the gateway client then refuses to start a transaction).
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret string // secret used to verify access tokens

	PaymentProvider  string // gateway name recorded on payment rows
	KhaltiSecretKey  string // secret key for the Khalti ePayment API
	KhaltiBaseURL    string // Khalti API base, e.g. https://dev.khalti.com/api/v2
	PaymentReturnURL string // URL the gateway redirects back to after checkout
	WebsiteURL       string // public site URL passed to the gateway

	LockWaitSeconds int // innodb_lock_wait_timeout applied per session, 0 keeps server default
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret: must("JWT_SECRET"),

		PaymentProvider:  getenv("PAYMENT_PROVIDER", "khalti"),
		KhaltiSecretKey:  os.Getenv("KHALTI_SECRET_KEY"),
		KhaltiBaseURL:    getenv("KHALTI_BASE_URL", "https://dev.khalti.com/api/v2"),
		PaymentReturnURL: os.Getenv("PAYMENT_RETURN_URL"),
		WebsiteURL:       os.Getenv("WEBSITE_URL"),

		LockWaitSeconds: envIntDefault("DB_LOCK_WAIT_SECONDS", 0),
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

// envIntDefault converts an optional environment variable to an integer,
// falling back to def when unset.  A malformed value is fatal: silently
// ignoring it would hide a deployment mistake.
func envIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
