package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL string
	SaleURL string
	RentURL string

	ListingsPerCategory int
	MaxConcurrency      int
	CatalogDelayMs      int
	DetailDelayMs       int
	RequestTimeoutSec   int
	UserAgent           string

	OutputPath string
	Debug      bool

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Category describes one catalog partition to crawl.
type Category struct {
	BaseURL     string
	ListingType string
	MaxListings int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BaseURL: getEnv("BASE_URL", "https://www.encuentra24.com"),
		SaleURL: getEnv("SALE_URL",
			"https://www.encuentra24.com/el-salvador-es/bienes-raices-venta-de-propiedades-casas"),
		RentURL: getEnv("RENT_URL",
			"https://www.encuentra24.com/el-salvador-es/bienes-raices-alquiler-casas"),

		ListingsPerCategory: getEnvInt("LISTINGS_PER_CATEGORY", 50),
		MaxConcurrency:      getEnvInt("MAX_CONCURRENCY", 1),
		CatalogDelayMs:      getEnvInt("CATALOG_DELAY_MS", 500),
		DetailDelayMs:       getEnvInt("DETAIL_DELAY_MS", 300),
		RequestTimeoutSec:   getEnvInt("REQUEST_TIMEOUT_SEC", 15),
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
				"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		OutputPath: getEnv("OUTPUT_PATH", "./output/sample.json"),
		Debug:      getEnvBool("DEBUG", false),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// Categories returns the catalog partitions in crawl order: sale, then rent.
func (c *Config) Categories() []Category {
	return []Category{
		{BaseURL: c.SaleURL, ListingType: "sale", MaxListings: c.ListingsPerCategory},
		{BaseURL: c.RentURL, ListingType: "rent", MaxListings: c.ListingsPerCategory},
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
