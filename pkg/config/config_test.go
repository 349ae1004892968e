package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got %v", err)
	}
	if cfg.ChunkDuration != 10 {
		t.Errorf("ChunkDuration = %v, want 10", cfg.ChunkDuration)
	}
	if cfg.ChunkOverlap != 30 {
		t.Errorf("ChunkOverlap = %v, want 30", cfg.ChunkOverlap)
	}
	if cfg.Model != "whisper-1" {
		t.Errorf("Model = %v, want whisper-1", cfg.Model)
	}
	if cfg.RatePerMinute != 0.006 {
		t.Errorf("RatePerMinute = %v, want 0.006", cfg.RatePerMinute)
	}
}

func TestConfigDerivedValues(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.ChunkLength(); got != 10*time.Minute {
		t.Errorf("ChunkLength() = %v, want %v", got, 10*time.Minute)
	}
	if got := cfg.Overlap(); got != 30*time.Second {
		t.Errorf("Overlap() = %v, want %v", got, 30*time.Second)
	}
	if got := cfg.MaxFileBytes(); got != 24*1024*1024 {
		t.Errorf("MaxFileBytes() = %v, want %v", got, 24*1024*1024)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "defaults are valid",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing api key is still valid",
			mutate:    func(c *Config) { c.APIKey = "" },
			wantError: false,
		},
		{
			name:      "zero chunk duration",
			mutate:    func(c *Config) { c.ChunkDuration = 0 },
			wantError: true,
		},
		{
			name:      "negative chunk duration",
			mutate:    func(c *Config) { c.ChunkDuration = -5 },
			wantError: true,
		},
		{
			name:      "negative overlap",
			mutate:    func(c *Config) { c.ChunkOverlap = -1 },
			wantError: true,
		},
		{
			name: "overlap equal to chunk duration",
			mutate: func(c *Config) {
				c.ChunkDuration = 1
				c.ChunkOverlap = 60
			},
			wantError: true,
		},
		{
			name: "overlap just under chunk duration",
			mutate: func(c *Config) {
				c.ChunkDuration = 1
				c.ChunkOverlap = 59
			},
			wantError: false,
		},
		{
			name:      "zero max file size",
			mutate:    func(c *Config) { c.MaxFileSize = 0 },
			wantError: true,
		},
		{
			name:      "negative rate",
			mutate:    func(c *Config) { c.RatePerMinute = -0.01 },
			wantError: true,
		},
		{
			name:      "zero rate is valid",
			mutate:    func(c *Config) { c.RatePerMinute = 0 },
			wantError: false,
		},
		{
			name:      "negative request delay",
			mutate:    func(c *Config) { c.RequestDelay = -time.Second },
			wantError: true,
		},
		{
			name:      "zero retries",
			mutate:    func(c *Config) { c.Retries = 0 },
			wantError: true,
		},
		{
			name:      "empty model",
			mutate:    func(c *Config) { c.Model = "" },
			wantError: true,
		},
		{
			name:      "empty response format",
			mutate:    func(c *Config) { c.ResponseFormat = "" },
			wantError: true,
		},
		{
			name:      "empty audio folder",
			mutate:    func(c *Config) { c.AudioFolder = "" },
			wantError: true,
		},
		{
			name:      "empty transcriptions folder",
			mutate:    func(c *Config) { c.TranscriptionsFolder = "" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	testDir, err := os.MkdirTemp("", "config_dirs_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	cfg := DefaultConfig()
	cfg.AudioFolder = filepath.Join(testDir, "audio")
	cfg.ChunksFolder = filepath.Join(testDir, "chunks")
	cfg.TranscriptionsFolder = filepath.Join(testDir, "transcriptions")
	cfg.LogsFolder = filepath.Join(testDir, "logs")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}

	for _, dir := range []string{cfg.AudioFolder, cfg.ChunksFolder, cfg.TranscriptionsFolder, cfg.LogsFolder} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("folder %s should exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s should be a directory", dir)
		}
	}

	// Idempotent on existing folders
	if err := cfg.EnsureDirs(); err != nil {
		t.Errorf("EnsureDirs() second call error = %v", err)
	}
}
