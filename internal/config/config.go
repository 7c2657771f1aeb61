package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile    = "configs/config.yaml"
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "cms.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "12h"
	defaultStorageDriver = "local"
	defaultLocalRoot     = "./storage/app/public"
	defaultPublicURL     = "/storage"
	defaultLogLevel      = "info"
	defaultMaxFileSize   = 50 << 20
	defaultPresignExpiry = "1h"
)

type Config struct {
	AppEnv      string            `yaml:"app_env"`
	HTTPAddr    string            `yaml:"http_addr"`
	DatabaseURL string            `yaml:"database_url"`
	JWT         JWTConfig         `yaml:"jwt"`
	Storage     StorageConfig     `yaml:"storage"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Driver    string   `yaml:"driver"` // local | s3
	LocalRoot string   `yaml:"local_root"`
	PublicURL string   `yaml:"public_url"`
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Region        string        `yaml:"region"`
	Bucket        string        `yaml:"bucket"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	Endpoint      string        `yaml:"endpoint"`
	PublicURL     string        `yaml:"public_url"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

type AttachmentsConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
	// PurgeFiles removes stored bytes when an attachment is force-deleted.
	PurgeFiles *bool `yaml:"purge_files"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE, then
// environment overrides, then fills defaults and validates.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	path := getEnv("CONFIG_FILE", defaultConfigFile)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overrideFromEnv() error {
	setString(&c.AppEnv, "APP_ENV", "ENV")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.LocalRoot, "STORAGE_LOCAL_ROOT")
	setString(&c.Storage.PublicURL, "STORAGE_PUBLIC_URL")
	setString(&c.Storage.S3.Region, "S3_REGION")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&c.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.S3.PublicURL, "S3_PUBLIC_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.CORS.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, o)
			}
		}
	}

	var err error
	if c.JWT.TTL, err = parseDurationEnv("JWT_TTL", c.JWT.TTL); err != nil {
		return err
	}
	if c.Storage.S3.PresignExpiry, err = parseDurationEnv("S3_PRESIGN_EXPIRY", c.Storage.S3.PresignExpiry); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("ATTACHMENTS_MAX_FILE_SIZE")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ATTACHMENTS_MAX_FILE_SIZE value %q: %w", v, err)
		}
		c.Attachments.MaxFileSize = n
	}
	if v := strings.TrimSpace(os.Getenv("ATTACHMENTS_PURGE_FILES")); v != "" {
		b := parseBool(v)
		c.Attachments.PurgeFiles = &b
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "dev"
	}
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = defaultDatabaseURL
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = defaultJWTSecret
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL, _ = time.ParseDuration(defaultJWTTTL)
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaultStorageDriver
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.LocalRoot == "" {
		c.Storage.LocalRoot = defaultLocalRoot
	}
	if c.Storage.PublicURL == "" {
		c.Storage.PublicURL = defaultPublicURL
	}
	if c.Storage.S3.PresignExpiry == 0 {
		c.Storage.S3.PresignExpiry, _ = time.ParseDuration(defaultPresignExpiry)
	}
	if c.Attachments.MaxFileSize == 0 {
		c.Attachments.MaxFileSize = defaultMaxFileSize
	}
	if c.Attachments.PurgeFiles == nil {
		purge := true
		c.Attachments.PurgeFiles = &purge
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 7
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func (c *Config) Validate() error {
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Attachments.MaxFileSize <= 0 {
		return fmt.Errorf("ATTACHMENTS_MAX_FILE_SIZE must be > 0")
	}
	switch c.Storage.Driver {
	case "local":
		if strings.TrimSpace(c.Storage.LocalRoot) == "" {
			return fmt.Errorf("STORAGE_LOCAL_ROOT must not be empty")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" || c.Storage.S3.Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, s3")
	}

	if c.IsProduction() {
		if isEmptyOrDefault(c.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if c.DatabaseURL == defaultDatabaseURL {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func (c *Config) PurgeFilesOnForceDelete() bool {
	return c.Attachments.PurgeFiles == nil || *c.Attachments.PurgeFiles
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name string, current time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return current, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

// setString overwrites dst with the first non-empty variable among names.
func setString(dst *string, names ...string) {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			*dst = v
			return
		}
	}
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
