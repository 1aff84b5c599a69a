package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when CONFIG_PATH is not set.
const DefaultConfigPath = "configs.toml"

// DatabaseConfig describes the backing store.
// Prefix selects the store ("sqlite:///" or "postgres://...") and FilePath its location.
type DatabaseConfig struct {
	FilePath           string `toml:"db_file_path"`
	Prefix             string `toml:"db_prefix"`
	MaxOpenConns       int    `toml:"max_open_conns"`
	MaxIdleConns       int    `toml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `toml:"conn_max_lifetime_sec"`
}

// URL joins the prefix and the location the way the store expects it.
// File-backed stores get an absolute path; server-backed stores take FilePath verbatim.
func (c DatabaseConfig) URL() (string, error) {
	if c.Prefix == "" || c.FilePath == "" {
		return "", errors.New("invalid database config: db_prefix and db_file_path are required")
	}
	if !strings.HasPrefix(c.Prefix, "sqlite") {
		return c.Prefix + c.FilePath, nil
	}
	abs, err := filepath.Abs(c.FilePath)
	if err != nil {
		return "", fmt.Errorf("resolve db_file_path: %w", err)
	}
	return c.Prefix + abs, nil
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        string   `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// DigioConfig holds credentials for the identity-verification API.
type DigioConfig struct {
	BaseURL      string `toml:"base_url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TimeoutSec   int    `toml:"timeout_sec"`
}

// Enabled reports whether enough is configured to call the API.
func (c DigioConfig) Enabled() bool {
	return c.BaseURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Enabled reports whether an object store endpoint was configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// TracingConfig holds the OpenTelemetry exporter settings.
type TracingConfig struct {
	Disabled    bool
	ServiceName string
	Protocol    string
	Endpoint    string
	Sampler     string
	SamplerArg  string
}

// AppConfig is the centralized configuration struct for the application.
type AppConfig struct {
	Database DatabaseConfig `toml:"db_configs"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Digio    DigioConfig    `toml:"digio"`
	MinIO    MinIOConfig    `toml:"minio"`
	Tracing  TracingConfig  `toml:"-"`
}

// Load builds the configuration from defaults, the TOML file at CONFIG_PATH
// (optional) and environment variables, in that order of precedence.
func Load() (*AppConfig, error) {
	return LoadFile(getEnv("CONFIG_PATH", DefaultConfigPath))
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (*AppConfig, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if _, err := cfg.Database.URL(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			FilePath:           "data/campus.db",
			Prefix:             "sqlite:///",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
		Server: ServerConfig{
			Port: "8000",
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:8000",
			},
		},
		Logging: LoggingConfig{Level: "info"},
		Digio: DigioConfig{
			BaseURL:    "https://api.digio.in",
			TimeoutSec: 30,
		},
	}
}

// decode rejects unknown keys so that typos in the file fail startup.
func decode(data []byte, cfg *AppConfig) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func applyEnv(cfg *AppConfig) {
	cfg.Database.FilePath = getEnv("DB_FILE_PATH", cfg.Database.FilePath)
	cfg.Database.Prefix = getEnv("DB_PREFIX", cfg.Database.Prefix)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", cfg.Database.ConnMaxLifetimeSec)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Pretty = getEnvBool("LOG_PRETTY", cfg.Logging.Pretty)

	cfg.Digio.BaseURL = getEnv("DIGIO_BASE_URL", cfg.Digio.BaseURL)
	cfg.Digio.ClientID = getEnv("DIGIO_CLIENT_ID", cfg.Digio.ClientID)
	cfg.Digio.ClientSecret = getEnv("DIGIO_CLIENT_SECRET", cfg.Digio.ClientSecret)
	cfg.Digio.TimeoutSec = getEnvInt("DIGIO_TIMEOUT_SEC", cfg.Digio.TimeoutSec)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)

	cfg.Tracing = TracingConfig{
		Disabled:    getEnvBool("OTEL_SDK_DISABLED", false),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "campusapi"),
		Protocol:    getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Sampler:     getEnv("OTEL_TRACES_SAMPLER", "parentbased_traceidratio"),
		SamplerArg:  getEnv("OTEL_TRACES_SAMPLER_ARG", "1.0"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
