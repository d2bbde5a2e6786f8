package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	ListenAddr    string
	MongoURI      string
	MongoDatabase string
	SessionSecret string
	CSRFKey       string
	Dev           bool
}

// Load reads .env when present, then the environment. Secrets must be
// set; everything else has a development default.
func Load() (*Config, error) {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getenv("LISTEN_ADDR", "127.0.0.1:8080"),
		MongoURI:      getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getenv("MONGO_DBNAME", "gymtrack"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CSRFKey:       os.Getenv("CSRF_KEY"),
		Dev:           os.Getenv("DEV_MODE") == "1",
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("config: SESSION_SECRET not set")
	}
	if cfg.CSRFKey == "" {
		return nil, fmt.Errorf("config: CSRF_KEY not set")
	}
	if len(cfg.CSRFKey) < 32 {
		return nil, fmt.Errorf("config: CSRF_KEY must be at least 32 bytes, got %d", len(cfg.CSRFKey))
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
