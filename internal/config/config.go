package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Results   ResultsConfig   `yaml:"results"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// DatabaseConfig selects the results store. URL is either a postgres:// DSN
// or sqlite:///path/to/file.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig enables the Redis upload lock when URL is set.
type RedisConfig struct {
	URL            string `yaml:"url"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// LockTTL returns the upload lock TTL as a time.Duration
func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// YouTubeConfig holds YouTube Data API configuration
type YouTubeConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	BatchSize      int    `yaml:"batch_size"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the timeout as a time.Duration
func (c YouTubeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExtractorConfig configures the yt-dlp subprocess used for Instagram and TikTok.
type ExtractorConfig struct {
	Binary               string  `yaml:"binary"`
	SocketTimeoutSeconds int     `yaml:"socket_timeout_seconds"`
	Retries              int     `yaml:"retries"` // 0 = extractor default, <0 = none
	UserAgent            string  `yaml:"user_agent"`
	InstagramSessionID   string  `yaml:"instagram_sessionid"`
	TimeoutSeconds       int     `yaml:"timeout_seconds"`
	RequestsPerSecond    float64 `yaml:"requests_per_second"`
}

// SocketTimeout returns the per-socket timeout as a time.Duration
func (c ExtractorConfig) SocketTimeout() time.Duration {
	return time.Duration(c.SocketTimeoutSeconds) * time.Second
}

// Timeout returns the whole-process timeout as a time.Duration
func (c ExtractorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ArchiveConfig holds S3 raw-upload archive settings. Archiving is off when
// S3Bucket is empty.
type ArchiveConfig struct {
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	Prefix     string `yaml:"prefix"`
	AWSProfile string `yaml:"aws_profile"`
}

// Enabled reports whether uploads should be archived.
func (c ArchiveConfig) Enabled() bool { return c.S3Bucket != "" }

// ResultsConfig controls the results listing.
type ResultsConfig struct {
	DefaultOrder string `yaml:"default_order"` // "asc" or "desc"
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Redact *bool  `yaml:"redact"`
}

// RedactEnabled reports whether credential redaction is on (default true).
func (c LogConfig) RedactEnabled() bool {
	return c.Redact == nil || *c.Redact
}

// Load reads and parses the configuration file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 20
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = "sqlite:///./kol_results.sqlite3"
	}
	if cfg.Redis.LockTTLSeconds == 0 {
		cfg.Redis.LockTTLSeconds = 600
	}
	if cfg.YouTube.BaseURL == "" {
		cfg.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.YouTube.TimeoutSeconds == 0 {
		cfg.YouTube.TimeoutSeconds = 15
	}
	if cfg.YouTube.BatchSize <= 0 || cfg.YouTube.BatchSize > 50 {
		cfg.YouTube.BatchSize = 50
	}
	if cfg.Extractor.Binary == "" {
		cfg.Extractor.Binary = "yt-dlp"
	}
	if cfg.Extractor.SocketTimeoutSeconds == 0 {
		cfg.Extractor.SocketTimeoutSeconds = 10
	}
	if cfg.Extractor.TimeoutSeconds == 0 {
		cfg.Extractor.TimeoutSeconds = 60
	}
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = "us-east-1"
	}
	if cfg.Results.DefaultOrder == "" {
		cfg.Results.DefaultOrder = "desc"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		cfg.YouTube.APIKey = v
	}
	if v := os.Getenv("INSTAGRAM_SESSIONID"); v != "" {
		cfg.Extractor.InstagramSessionID = v
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		cfg.Extractor.Binary = v
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.S3Region = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
