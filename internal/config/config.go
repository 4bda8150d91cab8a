package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds every runtime setting of the portal. Values come from
// defaults, then an optional YAML file, then environment variables.
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"GIN_MODE"`
		CORSOrigin      string        `yaml:"cors_origin" env:"CORS_ORIGIN"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database DBConfig `yaml:"database"`

	JWT struct {
		Secret   string        `yaml:"secret" env:"JWT_SECRET_KEY"`
		Lifetime time.Duration `yaml:"lifetime" env:"JWT_LIFETIME"`
	} `yaml:"jwt"`

	Uploads struct {
		Driver      string `yaml:"driver" env:"UPLOADS_DRIVER"`
		Dir         string `yaml:"dir" env:"UPLOADS_DIR"`
		MaxFileSize int64  `yaml:"max_file_size" env:"UPLOADS_MAX_FILE_SIZE"`
		S3          struct {
			Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
			Region          string `yaml:"region" env:"S3_REGION"`
			Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
			AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
			SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
		} `yaml:"s3"`
	} `yaml:"uploads"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	} `yaml:"logging"`

	Admin struct {
		Email     string `yaml:"email" env:"ADMIN_EMAIL"`
		Password  string `yaml:"password" env:"ADMIN_PASSWORD"`
		FirstName string `yaml:"first_name" env:"ADMIN_FIRST_NAME"`
		LastName  string `yaml:"last_name" env:"ADMIN_LAST_NAME"`
		Phone     string `yaml:"phone" env:"ADMIN_PHONE"`
	} `yaml:"admin"`

	RateLimit struct {
		SubmissionsPerMinute float64 `yaml:"submissions_per_minute" env:"RATE_SUBMISSIONS_PER_MINUTE"`
		Burst                int     `yaml:"burst" env:"RATE_SUBMISSIONS_BURST"`
	} `yaml:"rate_limit"`
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// absent or empty path) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for tools that only need part of the
// configuration (seedadmin never signs tokens).
func Read(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "debug"
	cfg.Server.CORSOrigin = "*"
	cfg.Server.ShutdownTimeout = 5 * time.Second

	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "postgres"
	cfg.Database.Name = "govportal"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 10

	cfg.JWT.Lifetime = 5 * time.Hour

	cfg.Uploads.Driver = StorageLocal
	cfg.Uploads.Dir = "uploads"
	cfg.Uploads.MaxFileSize = 5 * 1024 * 1024
	cfg.Uploads.S3.Region = "us-east-1"

	cfg.Logging.Level = "info"

	cfg.Admin.FirstName = "Admin"
	cfg.Admin.LastName = "User"
	cfg.Admin.Phone = "0000000000"

	cfg.RateLimit.SubmissionsPerMinute = 5
	cfg.RateLimit.Burst = 5
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required (JWT_SECRET_KEY)")
	}
	if c.JWT.Lifetime <= 0 {
		return fmt.Errorf("jwt lifetime must be positive, got %s", c.JWT.Lifetime)
	}
	switch c.Uploads.Driver {
	case StorageLocal:
		if c.Uploads.Dir == "" {
			return fmt.Errorf("uploads dir is required for the local driver")
		}
	case StorageS3:
		if c.Uploads.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown uploads driver %q", c.Uploads.Driver)
	}
	if c.Uploads.MaxFileSize <= 0 {
		return fmt.Errorf("uploads max file size must be positive")
	}
	if c.RateLimit.SubmissionsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// applyEnv walks the struct and overrides every field carrying an env tag
// whose variable is set.
func applyEnv(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue, exists := os.LookupEnv(envTag)
		if !exists {
			continue
		}
		if err := setField(field, strings.TrimSpace(envValue)); err != nil {
			return fmt.Errorf("failed to set %s from %s: %w", fieldType.Name, envTag, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
