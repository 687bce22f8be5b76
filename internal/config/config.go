package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const (
	ImageBackendLocal = "local"
	ImageBackendS3    = "s3"
)

// Config is read from defaults, an optional phonegallery.yaml, then the
// environment, later sources winning. File keys match the environment
// variable names, case-insensitively.
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	DBPath     string `mapstructure:"DB_PATH"`

	ImageBackend   string `mapstructure:"IMAGE_BACKEND"`
	ImageLocalPath string `mapstructure:"IMAGE_LOCAL_PATH"`
	S3Bucket       string `mapstructure:"S3_BUCKET"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey    string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey    string `mapstructure:"S3_SECRET_KEY"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`

	RequireImage    bool `mapstructure:"REQUIRE_IMAGE"`
	SeedOnStart     bool `mapstructure:"SEED_ON_START"`
	BackfillOnStart bool `mapstructure:"BACKFILL_ON_START"`
}

var defaults = map[string]any{
	"LISTEN_ADDR":       ":8080",
	"DB_PATH":           "data/phones.db",
	"IMAGE_BACKEND":     ImageBackendLocal,
	"IMAGE_LOCAL_PATH":  "public",
	"S3_BUCKET":         "",
	"S3_REGION":         "us-east-1",
	"S3_ENDPOINT":       "",
	"S3_ACCESS_KEY":     "",
	"S3_SECRET_KEY":     "",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
	"LOG_FILE":          "",
	"REQUIRE_IMAGE":     true,
	"SEED_ON_START":     true,
	"BACKFILL_ON_START": true,
}

// Load builds the configuration. configFile names an explicit config file,
// which must exist; when empty, phonegallery.yaml in the working directory
// is used if present.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("phonegallery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.ImageBackend {
	case ImageBackendLocal:
	case ImageBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when IMAGE_BACKEND=%s", ImageBackendS3)
		}
	default:
		return fmt.Errorf("unknown IMAGE_BACKEND %q", c.ImageBackend)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	return nil
}
