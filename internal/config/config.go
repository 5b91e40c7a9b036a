package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fleet-dispatch-service/internal/domain"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port                  string
	Environment           string
	LogLevel              string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	ResultCacheTTL        time.Duration
	RateLimitRPS          float64
	RateLimitBurst        int
	OptimizerDefaultsPath string
	SeedPath              string
	// Used when a request omits its depot. Nil when DEPOT_LAT/DEPOT_LON are unset.
	DefaultDepot *domain.Coordinates
}

// Load reads every setting with its fallback. Call godotenv.Load first to
// pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:                  Get("PORT", "8080"),
		Environment:           Get("ENVIRONMENT", "development"),
		LogLevel:              Get("LOG_LEVEL", "info"),
		DatabaseURL:           Get("DATABASE_URL", ""),
		RedisAddr:             Get("REDIS_ADDR", ""),
		RedisPassword:         Get("REDIS_PASSWORD", ""),
		ResultCacheTTL:        GetDuration("RESULT_CACHE_TTL", 10*time.Minute),
		RateLimitRPS:          GetFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:        GetInt("RATE_LIMIT_BURST", 40),
		OptimizerDefaultsPath: Get("OPTIMIZER_DEFAULTS_PATH", ""),
		SeedPath:              Get("SEED_PATH", "data/seeds/orders.json"),
	}

	lat, latSet := os.LookupEnv("DEPOT_LAT")
	lon, lonSet := os.LookupEnv("DEPOT_LON")
	if latSet || lonSet {
		depot, err := parseDepot(lat, lon)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg.DefaultDepot = &depot
	}

	if cfg.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("load config: RATE_LIMIT_RPS must not be negative, got %v", cfg.RateLimitRPS)
	}

	return cfg, nil
}

func parseDepot(lat, lon string) (domain.Coordinates, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("DEPOT_LAT %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("DEPOT_LON %q: %w", lon, err)
	}

	c := domain.Coordinates{Lat: la, Lon: lo}
	if err := c.Validate("depot"); err != nil {
		return domain.Coordinates{}, err
	}
	return c, nil
}

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(Get(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

// GetDuration accepts Go duration strings ("90s", "5m").
func GetDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
