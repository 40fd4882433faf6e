package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	CatalogAPIURL      string
	CatalogTimeoutSecs int
	CatalogRatePerSec  int

	RedisURL        string
	DatabaseURL     string
	SQLitePath      string
	StoreBackend    string
	SessionTTLHours int
	CORSOrigins     []string

	ItemCacheSecs int
	WarmPollSecs  int
	WarmBatch     int

	TelegramBotToken string
	AdminAPIKey      string

	SSHPort                   int
	SSHHostKeyPath            string
	SSHAuthorizedFingerprints []string

	ChartWidth  float64
	ChartHeight float64
}

var storeBackends = map[string]bool{
	"memory":   true,
	"redis":    true,
	"postgres": true,
	"sqlite":   true,
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminAPIKey:      strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8081"
	}

	cfg.CatalogAPIURL = strings.TrimSpace(os.Getenv("CATALOG_API_URL"))
	if cfg.CatalogAPIURL == "" {
		log.Println("Warning: CATALOG_API_URL not set, defaulting to http://localhost:8080")
		cfg.CatalogAPIURL = "http://localhost:8080"
	}
	cfg.CatalogTimeoutSecs = positiveInt("CATALOG_TIMEOUT_SECS", 10)
	cfg.CatalogRatePerSec = positiveInt("CATALOG_RATE_PER_SEC", 20)

	if cfg.AdminAPIKey == "" {
		log.Println("Warning: ADMIN_API_KEY not set, admin routes will be disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(os.Getenv("STORE_BACKEND")))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "redis"
	}
	if !storeBackends[cfg.StoreBackend] {
		log.Printf("Warning: unsupported STORE_BACKEND=%q, defaulting to memory", cfg.StoreBackend)
		cfg.StoreBackend = "memory"
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		log.Println("Warning: STORE_BACKEND=postgres but DATABASE_URL not set, defaulting to memory")
		cfg.StoreBackend = "memory"
	}

	cfg.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "grailify.db"
	}

	cfg.SessionTTLHours = positiveInt("SESSION_TTL_HOURS", 24*30)
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	cfg.ItemCacheSecs = positiveInt("ITEM_CACHE_SECS", 60)
	cfg.WarmPollSecs = positiveInt("WARM_POLL_SECS", 300)
	cfg.WarmBatch = positiveInt("WARM_BATCH", 2)

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/grailify_ed25519"
	}
	cfg.SSHAuthorizedFingerprints = splitList(os.Getenv("SSH_AUTHORIZED_FINGERPRINTS"))

	cfg.ChartWidth = positiveFloat("CHART_WIDTH", 600)
	cfg.ChartHeight = positiveFloat("CHART_HEIGHT", 150)

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, def)
		return def
	}
	return n
}

func positiveFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		log.Printf("Warning: invalid %s=%q, defaulting to %g", key, v, def)
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
