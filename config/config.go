package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Home airport the listings page is scraped for.
	HomeIATA       string
	ListingBaseURL string
	ModelLookupURL string
	TailLookupURL  string

	// Browser session tuning for the listings page.
	PageLoadTimeoutSec  int
	TableWaitTimeoutSec int
	DriverRetries       int
	DriverRetryDelaySec int

	// Enrichment lookup tuning.
	MaxConcurrency  int
	TailConcurrency int
	MaxRetries      int
	RetryBaseMs     int
	LookupPaceMs    int

	OutputDir         string
	MissingModelsPath string
	ChromeBin         string
	HTTPAddr          string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "tracker"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "tracker123"),
		PostgresDB:       getEnv("POSTGRES_DB", "emissions_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		HomeIATA:       getEnv("HOME_IATA", "ANC"),
		ListingBaseURL: getEnv("LISTING_BASE_URL", "https://www.flightera.net/en/airport/Anchorage/PANC"),
		ModelLookupURL: getEnv("MODEL_LOOKUP_URL", "https://www.radarbox.com/data/flights"),
		TailLookupURL:  getEnv("TAIL_LOOKUP_URL", "https://aerobasegroup.com/tail-number-lookup"),

		PageLoadTimeoutSec:  getEnvInt("PAGE_LOAD_TIMEOUT_SEC", 150),
		TableWaitTimeoutSec: getEnvInt("TABLE_WAIT_TIMEOUT_SEC", 30),
		DriverRetries:       getEnvInt("DRIVER_RETRIES", 3),
		DriverRetryDelaySec: getEnvInt("DRIVER_RETRY_DELAY_SEC", 3),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 50),
		TailConcurrency: getEnvInt("TAIL_CONCURRENCY", 20),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs:     getEnvInt("RETRY_BASE_MS", 1000),
		LookupPaceMs:    getEnvInt("LOOKUP_PACE_MS", 100),

		OutputDir:         getEnv("OUTPUT_DIR", "./data"),
		MissingModelsPath: getEnv("MISSING_MODELS_PATH", "missing_aircraft_models.txt"),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
