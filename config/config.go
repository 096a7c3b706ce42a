package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env      string
	LogLevel string

	DatasetPath string
	DatasetURL  string

	SheetsSpreadsheetID   string
	SheetsRange           string
	GoogleCredentialsFile string

	TargetYear int
	HTTPAddr   string

	StorageDriver    string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	CSVOutputPath       string
	DirectoryOutputPath string
	ProbeOutputPath     string

	OverpassURL   string
	OverpassArea  string
	WaybackCDXURL string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ChromeBin      string

	// EnvFileLoaded reports whether a .env file was found; logging is not
	// configured yet when Load runs, so the caller reports it.
	EnvFileLoaded bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	err := godotenv.Load()

	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOGLEVEL", ""),

		DatasetPath: getEnv("DATASET_PATH", "./data/bicycle_repair_shops_vienna.tsv"),
		DatasetURL:  getEnv("DATASET_URL", ""),

		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:           getEnv("SHEETS_RANGE", "Sheet1!A1:Z1000"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),

		TargetYear: getEnvInt("TARGET_YEAR", 2025),
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),

		StorageDriver:    getEnv("STORAGE_DRIVER", "none"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "shops"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "shops123"),
		PostgresDB:       getEnv("POSTGRES_DB", "bikeshops"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/shops.db"),

		CSVOutputPath:       getEnv("CSV_OUTPUT_PATH", "./output/shops.csv"),
		DirectoryOutputPath: getEnv("DIRECTORY_OUTPUT_PATH", "./output/bike_shops.tsv"),
		ProbeOutputPath:     getEnv("PROBE_OUTPUT_PATH", "./output/price_candidates.csv"),

		OverpassURL:   getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassArea:  getEnv("OVERPASS_AREA", "Wien"),
		WaybackCDXURL: getEnv("WAYBACK_CDX_URL", "https://web.archive.org/cdx/search/cdx"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		EnvFileLoaded: err == nil,
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

// IsProduction reports whether ENV is set to production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
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
