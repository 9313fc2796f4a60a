package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the StreamTV gateway service.
type Config struct {
	AppPort int
	DataDir string

	BaserowURL      string
	BaserowToken    string
	ContentsTable   int
	EpisodesTable   int
	BannersTable    int
	UsersTable      int
	CategoriesTable int

	AccessCheckURL string
	AccessUUID     string
	AccessCacheTTL time.Duration

	RelayRatePerMin int
	RelayBurst      int

	LogLevel string
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort: getInt("STREAMTV_PORT", 8080),
		DataDir: getString("STREAMTV_DATA_DIR", "data"),

		BaserowURL:      getString("STREAMTV_BASEROW_URL", "http://localhost/api"),
		BaserowToken:    getString("STREAMTV_BASEROW_TOKEN", ""),
		ContentsTable:   getInt("STREAMTV_TABLE_CONTENTS", 4241),
		EpisodesTable:   getInt("STREAMTV_TABLE_EPISODES", 4251),
		BannersTable:    getInt("STREAMTV_TABLE_BANNERS", 4244),
		UsersTable:      getInt("STREAMTV_TABLE_USERS", 4250),
		CategoriesTable: getInt("STREAMTV_TABLE_CATEGORIES", 4243),

		AccessCheckURL: getString("STREAMTV_ACCESS_CHECK_URL", ""),
		AccessUUID:     getString("STREAMTV_ACCESS_UUID", ""),
		AccessCacheTTL: getDuration("STREAMTV_ACCESS_CACHE_TTL", time.Minute),

		RelayRatePerMin: getInt("STREAMTV_RELAY_RATE_PER_MIN", 120),
		RelayBurst:      getInt("STREAMTV_RELAY_BURST", 30),

		LogLevel: getString("STREAMTV_LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
