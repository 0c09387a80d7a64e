package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	CORSOrigin string
	// Catalog sources. A file takes precedence over the database when both are set.
	CatalogFile        string
	CatalogDatabaseURL string
	MigrationsDir      string
	// CatalogSeed drives the randomized demo counts for sparse catalog records.
	// Zero keeps every synthesized counter at zero.
	CatalogSeed int64
	// TrendingLimit is the default size of the trending list.
	TrendingLimit int
	// Redis change feed, disabled when RedisURL is empty
	RedisURL     string
	RedisChannel string
	// Poll search, disabled when MeiliURL is empty
	MeiliURL       string
	MeiliMasterKey string
	// ReindexSchedule is a cron spec for resyncing the search index; "off" disables it.
	ReindexSchedule string
	LogLevel        string
	LogEncoding     string
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:               getenv("API_ADDR", ":8787"),
		CORSOrigin:         getenv("TOWNHALL_CORS_ORIGIN", "*"),
		CatalogFile:        getenv("TOWNHALL_CATALOG_FILE", ""),
		CatalogDatabaseURL: getenv("CATALOG_DATABASE_URL", ""),
		MigrationsDir:      getenv("TOWNHALL_MIGRATIONS_DIR", "./db/migrations"),
		CatalogSeed:        getenvInt64("TOWNHALL_CATALOG_SEED", 0),
		TrendingLimit:      getenvInt("TOWNHALL_TRENDING_LIMIT", 5),
		RedisURL:           getenv("REDIS_URL", ""),
		RedisChannel:       getenv("TOWNHALL_REDIS_CHANNEL", "townhall:polls"),
		MeiliURL:           getenv("MEILI_URL", ""),
		MeiliMasterKey:     getenv("MEILI_MASTER_KEY", ""),
		ReindexSchedule:    getenv("TOWNHALL_REINDEX_SCHEDULE", "@every 5m"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogEncoding:        getenv("LOG_ENCODING", "json"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
