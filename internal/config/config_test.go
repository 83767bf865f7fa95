package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "chorewheel.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.SchedulerInterval != time.Minute {
		t.Errorf("interval = %v, want 1m", cfg.SchedulerInterval)
	}
	if cfg.Assist.Model != "gpt-4o-mini" {
		t.Errorf("assist model = %q", cfg.Assist.Model)
	}
	if cfg.Backup.Region != "us-east-1" {
		t.Errorf("backup region = %q", cfg.Backup.Region)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHOREWHEEL_PORT", "9090")
	t.Setenv("CHOREWHEEL_SCHEDULER_INTERVAL", "30s")
	t.Setenv("CHOREWHEEL_ASSIST_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("CHOREWHEEL_BACKUP_S3_BUCKET", "household-backups")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.SchedulerInterval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.SchedulerInterval)
	}
	if cfg.Assist.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("assist base url = %q", cfg.Assist.BaseURL)
	}
	if cfg.Backup.Bucket != "household-backups" {
		t.Errorf("backup bucket = %q", cfg.Backup.Bucket)
	}
}
