package config

import (
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client and dev server settings
type Config struct {
	APIBase     string
	WSURL       string
	Store       string
	LogFile     string
	HTTPTimeout time.Duration
	APIRPS      float64
	APIBurst    int

	Port      string
	JWTSecret string
}

// Load reads an optional env file and then the environment.
// A missing env file is not an error.
func Load(envFile string) Config {
	var err error
	if envFile != "" {
		err = godotenv.Load(envFile)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults
func FromEnv(getenv func(string) string) Config {
	dir := configDir()

	cfg := Config{
		APIBase:     strings.TrimRight(getenvDefault(getenv, "NEBULA_API_BASE", "http://localhost:8080"), "/"),
		Store:       getenvDefault(getenv, "NEBULA_STORE", filepath.Join(dir, "accounts.db")),
		LogFile:     getenvDefault(getenv, "NEBULA_LOG_FILE", filepath.Join(dir, "nebula.log")),
		HTTPTimeout: 15 * time.Second,
		APIRPS:      10,
		APIBurst:    5,
		Port:        getenvDefault(getenv, "PORT", "8080"),
		JWTSecret:   getenvDefault(getenv, "NEBULA_JWT_SECRET", "nebula-dev-secret"),
	}

	cfg.WSURL = getenv("NEBULA_WS_URL")
	if cfg.WSURL == "" {
		cfg.WSURL = DeriveWSURL(cfg.APIBase)
	}

	if v := getenv("NEBULA_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		} else {
			log.Printf("Ignoring invalid NEBULA_HTTP_TIMEOUT %q", v)
		}
	}
	if v := getenv("NEBULA_API_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.APIRPS = f
		} else {
			log.Printf("Ignoring invalid NEBULA_API_RPS %q", v)
		}
	}
	if v := getenv("NEBULA_API_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIBurst = n
		} else {
			log.Printf("Ignoring invalid NEBULA_API_BURST %q", v)
		}
	}

	return cfg
}

// DeriveWSURL maps http(s)://host/base to ws(s)://host/base/ws
func DeriveWSURL(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "ws://localhost:8080/ws"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nebula")
}
