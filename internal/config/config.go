// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the application reads at startup.
type Config struct {
	Port     string `env:"CHOREWHEEL_PORT" envDefault:"8080"`
	DBPath   string `env:"CHOREWHEEL_DB_PATH" envDefault:"chorewheel.db"`
	LogLevel string `env:"CHOREWHEEL_LOG_LEVEL" envDefault:"info"`

	// How often the background scheduler wakes up to generate occurrences,
	// escalate overdue work, and redistribute around absences.
	SchedulerInterval time.Duration `env:"CHOREWHEEL_SCHEDULER_INTERVAL" envDefault:"1m"`

	Assist AssistConfig `envPrefix:"CHOREWHEEL_ASSIST_"`
	Backup BackupConfig `envPrefix:"CHOREWHEEL_BACKUP_"`
}

// AssistConfig points at an OpenAI-compatible chat completion endpoint used
// for plan proposals. Leave BaseURL empty to disable.
type AssistConfig struct {
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`
	Model   string `env:"MODEL" envDefault:"gpt-4o-mini"`
}

// BackupConfig configures encrypted snapshots to S3-compatible storage.
// Backups are disabled unless bucket, credentials, and passphrase are all set.
type BackupConfig struct {
	Endpoint   string `env:"S3_ENDPOINT"`
	Bucket     string `env:"S3_BUCKET"`
	Region     string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKey  string `env:"S3_ACCESS_KEY"`
	SecretKey  string `env:"S3_SECRET_KEY"`
	Passphrase string `env:"PASSPHRASE"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
