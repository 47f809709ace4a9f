// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	AllowedOrigins    []string      `yaml:"allowedOrigins"`
	// SessionTTL drops planner sessions idle for longer. Zero keeps them.
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

type Optimizer struct {
	// URL of the remote optimizer. Empty selects the in-process solver.
	URL string `yaml:"url"`
	// Timeout caps one optimizer call. Zero waits until the optimizer
	// answers or the connection fails, however long a cold start takes.
	Timeout        time.Duration `yaml:"timeout"`
	ColdStartAfter time.Duration `yaml:"coldStartAfter"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	Backoff        time.Duration `yaml:"backoff"`
}

type Geocoder struct {
	// Endpoint of a Google-compatible geocoding API. Empty disables geocoding.
	Endpoint      string  `yaml:"endpoint"`
	APIKey        string  `yaml:"apiKey"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
	Burst         int     `yaml:"burst"`
	MaxResults    int     `yaml:"maxResults"`
}

type Storage struct {
	DatabaseURL string        `yaml:"databaseURL"`
	DBPath      string        `yaml:"dbPath"`
	RedisURL    string        `yaml:"redisURL"`
	ReportTTL   time.Duration `yaml:"reportTTL"`
	SeedPath    string        `yaml:"seedPath"`
}

type Presets struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Optimizer Optimizer `yaml:"optimizer"`
	Geocoder  Geocoder  `yaml:"geocoder"`
	Storage   Storage   `yaml:"storage"`
	Presets   Presets   `yaml:"presets"`
}

// Defaults returns the settings used when neither file nor environment set a value.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      150 * time.Second,
			SessionTTL:        12 * time.Hour,
		},
		Optimizer: Optimizer{
			ColdStartAfter: 15 * time.Second,
			MaxAttempts:    4,
			Backoff:        500 * time.Millisecond,
		},
		Geocoder: Geocoder{
			RatePerSecond: 10,
			Burst:         1,
			MaxResults:    5,
		},
		Storage: Storage{
			DBPath:    "data/app.db",
			ReportTTL: 7 * 24 * time.Hour,
		},
	}
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads .env into the environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the YAML file at path (skipped when path is empty) over the
// defaults and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = Get("PORT", c.Server.Port)
	if v := Get("ALLOWED_ORIGINS", ""); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	c.Optimizer.URL = Get("OPTIMIZER_URL", c.Optimizer.URL)
	c.Geocoder.Endpoint = Get("GEOCODER_URL", c.Geocoder.Endpoint)
	c.Geocoder.APIKey = Get("GEOCODER_API_KEY", c.Geocoder.APIKey)
	c.Storage.DatabaseURL = Get("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.DBPath = Get("DB_PATH", c.Storage.DBPath)
	c.Storage.RedisURL = Get("REDIS_URL", c.Storage.RedisURL)
	c.Storage.SeedPath = Get("SEED_PATH", c.Storage.SeedPath)
	c.Presets.Dir = Get("PRESETS_DIR", c.Presets.Dir)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"OPTIMIZER_TIMEOUT", &c.Optimizer.Timeout},
		{"COLD_START_AFTER", &c.Optimizer.ColdStartAfter},
		{"SESSION_TTL", &c.Server.SessionTTL},
		{"REPORT_TTL", &c.Storage.ReportTTL},
	}
	for _, d := range durations {
		v := Get(d.key, "")
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if v := Get("GEOCODER_RPS", ""); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GEOCODER_RPS: %w", err)
		}
		c.Geocoder.RatePerSecond = rps
	}

	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server port is empty"))
	}
	if c.Optimizer.ColdStartAfter <= 0 {
		errs = append(errs, errors.New("optimizer coldStartAfter must be positive"))
	}
	if c.Optimizer.MaxAttempts <= 0 {
		errs = append(errs, errors.New("optimizer maxAttempts must be positive"))
	}
	if c.Geocoder.RatePerSecond < 0 {
		errs = append(errs, errors.New("geocoder ratePerSecond must not be negative"))
	}
	return errors.Join(errs...)
}
