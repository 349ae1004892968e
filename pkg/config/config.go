package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hearingscribe/hearingscribe/pkg/logger"
)

// Config represents the application configuration
type Config struct {
	// Chunking Configuration
	ChunkDuration int `yaml:"chunk_duration" mapstructure:"chunk_duration"` // minutes
	ChunkOverlap  int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`   // seconds
	MaxFileSize   int `yaml:"max_file_size" mapstructure:"max_file_size"`   // MB

	// Transcription Configuration
	Language       string `yaml:"language" mapstructure:"language"`
	Prompt         string `yaml:"prompt" mapstructure:"prompt"`
	Model          string `yaml:"model" mapstructure:"model"`
	ResponseFormat string `yaml:"response_format" mapstructure:"response_format"`

	// Billing Configuration
	RatePerMinute float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute"` // dollars per audio minute

	// Service Configuration
	RequestDelay time.Duration `yaml:"request_delay" mapstructure:"request_delay"`
	Retries      int           `yaml:"retries" mapstructure:"retries"` // attempts per chunk call
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string        `yaml:"-" mapstructure:"api_key"`

	// Folder Layout
	AudioFolder          string `yaml:"audio_folder" mapstructure:"audio_folder"`
	ChunksFolder         string `yaml:"chunks_folder" mapstructure:"chunks_folder"`
	TranscriptionsFolder string `yaml:"transcriptions_folder" mapstructure:"transcriptions_folder"`
	LogsFolder           string `yaml:"logs_folder" mapstructure:"logs_folder"`

	// Logging Configuration
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ChunkDuration:        10,
		ChunkOverlap:         30,
		MaxFileSize:          24,
		Language:             "es",
		Model:                "whisper-1",
		ResponseFormat:       "text",
		RatePerMinute:        0.006,
		RequestDelay:         time.Second,
		Retries:              3,
		AudioFolder:          "audio",
		ChunksFolder:         "chunks",
		TranscriptionsFolder: "transcriptions",
		LogsFolder:           "logs",
		Logging:              *logger.DefaultConfig(),
	}
}

// ChunkLength returns the configured chunk duration.
func (c *Config) ChunkLength() time.Duration {
	return time.Duration(c.ChunkDuration) * time.Minute
}

// Overlap returns the configured chunk overlap.
func (c *Config) Overlap() time.Duration {
	return time.Duration(c.ChunkOverlap) * time.Second
}

// MaxFileBytes returns the upload size ceiling in bytes.
func (c *Config) MaxFileBytes() int64 {
	return int64(c.MaxFileSize) * 1024 * 1024
}

// Validate checks the configuration for values the pipeline cannot run
// with. The API key is intentionally not checked here; estimation paths
// work without one.
func (c *Config) Validate() error {
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk_duration must be positive, got %d", c.ChunkDuration)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap cannot be negative, got %d", c.ChunkOverlap)
	}
	if c.Overlap() >= c.ChunkLength() {
		return fmt.Errorf("chunk_overlap (%ds) must be smaller than chunk_duration (%dm)", c.ChunkOverlap, c.ChunkDuration)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("rate_per_minute cannot be negative, got %g", c.RatePerMinute)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay cannot be negative, got %s", c.RequestDelay)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.ResponseFormat == "" {
		return fmt.Errorf("response_format is required")
	}
	if c.AudioFolder == "" {
		return fmt.Errorf("audio_folder is required")
	}
	if c.ChunksFolder == "" {
		return fmt.Errorf("chunks_folder is required")
	}
	if c.TranscriptionsFolder == "" {
		return fmt.Errorf("transcriptions_folder is required")
	}
	if c.LogsFolder == "" {
		return fmt.Errorf("logs_folder is required")
	}
	return nil
}

// EnsureDirs creates the working folders if they do not exist.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.AudioFolder, c.ChunksFolder, c.TranscriptionsFolder, c.LogsFolder} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", dir, err)
		}
	}
	return nil
}
