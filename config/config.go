package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnvVar is the environment variable holding the data.gov.in API key.
// When neither the variable nor the config file provides a key the tool runs
// in scrape-only mode.
const APIKeyEnvVar = "DATA_GOV_IN_API_KEY"

type Config struct {
	Mandiflow MandiflowConfig `yaml:"mandiflow"`
	API       APIConfig       `yaml:"api"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type MandiflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type APIConfig struct {
	Endpoint  string          `yaml:"endpoint"`
	Key       string          `yaml:"key"`
	PageLimit int             `yaml:"page_limit"`
	ResultCap int             `yaml:"result_cap"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type ScrapeConfig struct {
	URL          string        `yaml:"url"`
	Headless     bool          `yaml:"headless"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	TableTimeout time.Duration `yaml:"table_timeout"`
}

type ExportConfig struct {
	Output string   `yaml:"output"`
	Format string   `yaml:"format"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level      string           `yaml:"level"`
	Format     string           `yaml:"format"`
	Output     string           `yaml:"output"`
	MaxAge     int              `yaml:"max_age"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

// DefaultPath is where LoadConfig looks when no --config flag is given.
const DefaultPath = "config/config.yml"

func defaults() Config {
	return Config{
		Mandiflow: MandiflowConfig{
			Name:    "mandiflow",
			Version: "dev",
		},
		API: APIConfig{
			Endpoint:  "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070",
			PageLimit: 1000,
			ResultCap: 10000,
			Timeout:   30 * time.Second,
			RateLimit: RateLimitConfig{RequestsPerSecond: 5, BurstSize: 5},
		},
		Scrape: ScrapeConfig{
			URL:          "https://agmarknet.gov.in/PriceAndArrivals/DatewiseCommodityReport.aspx",
			Headless:     true,
			PageTimeout:  60 * time.Second,
			TableTimeout: 10 * time.Second,
		},
		Export: ExportConfig{
			Output: "mandi_prices_master.csv",
			Format: "csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig reads the YAML configuration at path, falling back to built-in
// defaults when the default path does not exist. Environment variables
// override the API key and the S3 credentials so secrets can stay out of the
// file.
func LoadConfig(path string) (*Config, error) {
	config := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) || path != DefaultPath {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv(APIKeyEnvVar); v != "" {
		config.API.Key = strings.TrimSpace(v)
	}

	if config.Export.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Export.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Export.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Export.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Export.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Export.S3.Bucket = strings.TrimSpace(config.Export.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Mandiflow.Name == "" {
		return fmt.Errorf("mandiflow.name is required")
	}

	if cfg.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint is required")
	}
	if cfg.API.PageLimit <= 0 {
		return fmt.Errorf("api.page_limit must be greater than 0")
	}
	if cfg.API.ResultCap < cfg.API.PageLimit {
		return fmt.Errorf("api.result_cap must be at least api.page_limit")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be greater than 0")
	}
	if cfg.API.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("api.rate_limit.requests_per_second must be greater than 0")
	}

	if cfg.Scrape.URL == "" {
		return fmt.Errorf("scrape.url is required")
	}
	if cfg.Scrape.PageTimeout <= 0 {
		return fmt.Errorf("scrape.page_timeout must be greater than 0")
	}

	switch cfg.Export.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("export.format must be csv or parquet, got %q", cfg.Export.Format)
	}

	if cfg.Export.S3.Enabled {
		if cfg.Export.S3.Bucket == "" {
			return fmt.Errorf("export.s3.bucket is required when S3 is enabled")
		}
		if cfg.Export.S3.Region == "" {
			return fmt.Errorf("export.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Export.S3.Bucket) {
			return fmt.Errorf("export.s3.bucket '%s' is invalid", cfg.Export.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
