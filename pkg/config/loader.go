package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader handles configuration loading and management
type Loader struct {
	configPath string
	viper      *viper.Viper
}

// NewLoader creates a new configuration loader. A .env file in the
// working directory is loaded first so the API key can live next to the
// audio folders instead of the shell profile.
func NewLoader(configPath string) *Loader {
	_ = godotenv.Load()

	v := viper.New()

	// Set up environment variable handling
	v.SetEnvPrefix("HEARINGSCRIBE")
	v.AutomaticEnv()

	// The key is read from the provider's conventional variable, not a
	// prefixed one
	_ = v.BindEnv("api_key", "OPENAI_API_KEY")

	// Set up configuration file search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search in multiple locations
		home, _ := os.UserHomeDir()
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hearingscribe")
		v.SetConfigName(".hearingscribe")
		v.SetConfigType("yaml")
	}

	return &Loader{
		configPath: configPath,
		viper:      v,
	}
}

// Load reads and returns the configuration
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithOverrides(nil)
}

// LoadWithOverrides loads configuration with command-line overrides
// applied on top of file and environment values.
func (l *Loader) LoadWithOverrides(overrides map[string]interface{}) (*Config, error) {
	// Set defaults
	l.setDefaults()

	// Try to read config file
	if err := l.viper.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults and env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Apply overrides
	for key, value := range overrides {
		l.viper.Set(key, value)
	}

	// Unmarshal configuration
	var cfg Config
	if err := l.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// GetConfigFile returns the path to the config file being used
func (l *Loader) GetConfigFile() string {
	return l.viper.ConfigFileUsed()
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	def := DefaultConfig()

	// Chunking defaults
	l.viper.SetDefault("chunk_duration", def.ChunkDuration)
	l.viper.SetDefault("chunk_overlap", def.ChunkOverlap)
	l.viper.SetDefault("max_file_size", def.MaxFileSize)

	// Transcription defaults
	l.viper.SetDefault("language", def.Language)
	l.viper.SetDefault("prompt", def.Prompt)
	l.viper.SetDefault("model", def.Model)
	l.viper.SetDefault("response_format", def.ResponseFormat)

	// Billing defaults
	l.viper.SetDefault("rate_per_minute", def.RatePerMinute)

	// Service defaults
	l.viper.SetDefault("request_delay", def.RequestDelay)
	l.viper.SetDefault("retries", def.Retries)
	l.viper.SetDefault("base_url", def.BaseURL)
	l.viper.SetDefault("api_key", "")

	// Folder defaults
	l.viper.SetDefault("audio_folder", def.AudioFolder)
	l.viper.SetDefault("chunks_folder", def.ChunksFolder)
	l.viper.SetDefault("transcriptions_folder", def.TranscriptionsFolder)
	l.viper.SetDefault("logs_folder", def.LogsFolder)

	// Logging defaults
	l.viper.SetDefault("logging.level", def.Logging.Level)
	l.viper.SetDefault("logging.format", def.Logging.Format)
	l.viper.SetDefault("logging.output", def.Logging.Output)
	l.viper.SetDefault("logging.timestamp", def.Logging.Timestamp)
	l.viper.SetDefault("logging.caller", def.Logging.Caller)
	l.viper.SetDefault("logging.no_color", def.Logging.NoColor)
}
