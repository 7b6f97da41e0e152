package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	AWS     AWSConfig
	Storage StorageConfig
	Log     LogConfig
}

type AppConfig struct {
	// FilePathTemplate locates keyword files, e.g. "./data/{}.csv".
	FilePathTemplate   string
	OperationTimeout   time.Duration
	EnqueueConcurrency int
}

type AWSConfig struct {
	Region          string
	AccountID       string
	EndpointURL     string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
}

type StorageConfig struct {
	Backend        string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	StorageBackendS3    = "s3"
	StorageBackendMinio = "minio"
)

// Load reads configuration from an optional .env file and the environment.
// Every call returns a fresh Config built from a private viper instance.
func Load(envFiles ...string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(envFiles...)

	v := viper.New()

	// Set default values
	v.SetDefault("FILE_PATH_TEMPLATE", "./data/{}.csv")
	v.SetDefault("OPERATION_TIMEOUT_SECONDS", 30)
	v.SetDefault("ENQUEUE_CONCURRENCY", 4)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCOUNT_ID", "")
	v.SetDefault("AWS_ENDPOINT_URL", "")
	v.SetDefault("AWS_PROFILE", "")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("STORAGE_BACKEND", StorageBackendS3)
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_USE_SSL", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Read from environment variables
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			FilePathTemplate:   v.GetString("FILE_PATH_TEMPLATE"),
			OperationTimeout:   time.Duration(v.GetInt("OPERATION_TIMEOUT_SECONDS")) * time.Second,
			EnqueueConcurrency: v.GetInt("ENQUEUE_CONCURRENCY"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("AWS_REGION"),
			AccountID:       v.GetString("AWS_ACCOUNT_ID"),
			EndpointURL:     v.GetString("AWS_ENDPOINT_URL"),
			Profile:         v.GetString("AWS_PROFILE"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
			MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
			MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
			MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendS3:
	case StorageBackendMinio:
		if c.Storage.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT must be set when STORAGE_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.App.OperationTimeout < 0 {
		return fmt.Errorf("OPERATION_TIMEOUT_SECONDS must not be negative")
	}
	if c.App.EnqueueConcurrency <= 0 {
		c.App.EnqueueConcurrency = 1
	}
	return nil
}
