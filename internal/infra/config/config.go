// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

// Config holds the environment-derived settings for the whole service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// StoreDriver selects the document store backend.
	StoreDriver string

	FirestoreProjectID         string
	FirestoreDatabaseID        string
	FirestoreCredentialsFile   string
	FirestoreCredentialsSecret string // Secret Manager resource name holding credentials JSON
	GCPCreds                   string // GOOGLE_APPLICATION_CREDENTIALS
	FirebaseProjectID          string

	DatabaseURL string

	ProductsCollection        string
	CategoriesCollection      string
	TopCategoriesCollection   string
	ProductOfTheDayCollection string
	CartsCollection           string
	UsersCollection           string

	ImageBucket       string
	ImageSignedURLTTL time.Duration

	SendGridAPIKey string
	SendGridFrom   string
	StoreName      string

	CatalogTimezone    string
	CORSAllowedOrigins []string
}

// Load reads a .env file when present (real env wins) and returns the Config.
func Load() *Config {
	_ = godotenv.Load()

	defaultProject := getenvDefault("GOOGLE_CLOUD_PROJECT", "")

	cfg := &Config{
		Port:     getenvDefault("PORT", "8080"),
		AppEnv:   getenvDefault("APP_ENV", "development"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getenvDefault("STORE_DRIVER", DriverFirestore)),

		FirestoreProjectID:         getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreDatabaseID:        getenvDefault("FIRESTORE_DATABASE_ID", "(default)"),
		FirestoreCredentialsFile:   os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirestoreCredentialsSecret: os.Getenv("FIRESTORE_CREDENTIALS_SECRET"),
		GCPCreds:                   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		ProductsCollection:        getenvDefault("PRODUCTS_COLLECTION", "products"),
		CategoriesCollection:      getenvDefault("CATEGORIES_COLLECTION", "categories"),
		TopCategoriesCollection:   getenvDefault("TOP_CATEGORIES_COLLECTION", "topCategories"),
		ProductOfTheDayCollection: getenvDefault("PRODUCT_OF_THE_DAY_COLLECTION", "productOfTheDay"),
		CartsCollection:           getenvDefault("CARTS_COLLECTION", "carts"),
		UsersCollection:           getenvDefault("USERS_COLLECTION", "users"),

		ImageBucket:       os.Getenv("IMAGE_BUCKET"),
		ImageSignedURLTTL: getenvDuration("IMAGE_SIGNED_URL_TTL", 0),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:   os.Getenv("SENDGRID_FROM"),
		StoreName:      getenvDefault("STORE_NAME", "Storefront"),

		CatalogTimezone:    getenvDefault("CATALOG_TIMEZONE", "UTC"),
		CORSAllowedOrigins: splitList(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	// Firebase Auth lives in the same project unless told otherwise.
	cfg.FirebaseProjectID = getenvDefault("FIREBASE_PROJECT_ID", cfg.FirestoreProjectID)

	return cfg
}

// Validate reports settings the selected driver cannot run without.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	switch c.StoreDriver {
	case DriverFirestore:
		if strings.TrimSpace(c.FirestoreProjectID) == "" {
			return errors.New("config: FIRESTORE_PROJECT_ID (or GOOGLE_CLOUD_PROJECT) is required for the firestore driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := time.LoadLocation(c.CatalogTimezone); err != nil {
		return fmt.Errorf("config: CATALOG_TIMEZONE: %w", err)
	}
	return nil
}

// CredentialsFile prefers the Firestore-specific file over ADC's env var.
func (c *Config) CredentialsFile() string {
	if f := strings.TrimSpace(c.FirestoreCredentialsFile); f != "" {
		return f
	}
	return strings.TrimSpace(c.GCPCreds)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
