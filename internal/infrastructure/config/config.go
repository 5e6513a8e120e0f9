package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database DatabaseConfig
	S3       S3Config
	Log      LogConfig
	Media    MediaConfig
}

type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" required:"true"`
	Password        string        `envconfig:"DB_PASSWORD" required:"true"`
	Name            string        `envconfig:"DB_NAME" required:"true"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type S3Config struct {
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	Bucket          string `envconfig:"S3_BUCKET" required:"true"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID" required:"true"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY" required:"true"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// MediaConfig bounds uploads and shapes the rendition set.
type MediaConfig struct {
	MaxUploadBytes   int `envconfig:"MEDIA_MAX_UPLOAD_BYTES" default:"5242880"`
	MinDimension     int `envconfig:"MEDIA_MIN_DIMENSION" default:"200"`
	MaxDimension     int `envconfig:"MEDIA_MAX_DIMENSION" default:"5000"`
	MaxBatchSize     int `envconfig:"MEDIA_MAX_BATCH_SIZE" default:"10"`
	Workers          int `envconfig:"MEDIA_WORKERS" default:"4"`
	ThumbnailSize    int `envconfig:"MEDIA_THUMBNAIL_SIZE" default:"200"`
	ThumbnailQuality int `envconfig:"MEDIA_THUMBNAIL_QUALITY" default:"80"`
	MediumSize       int `envconfig:"MEDIA_MEDIUM_SIZE" default:"800"`
	MediumQuality    int `envconfig:"MEDIA_MEDIUM_QUALITY" default:"85"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}
