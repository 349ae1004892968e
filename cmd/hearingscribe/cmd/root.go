package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearingscribe/hearingscribe/pkg/config"
	"github.com/hearingscribe/hearingscribe/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hearingscribe",
	Short: "Batch transcription for long hearing recordings",
	Long: `hearingscribe turns folders of multi-hour hearing recordings into text
transcripts using the OpenAI transcription API.

Features:
- Fixed-length chunking with overlap so long recordings fit API limits
- Upfront cost estimate with confirmation before any API spend
- Bounded retries for transient API failures
- Partial transcripts with positional markers when chunks fail
- Watch mode that transcribes recordings as they arrive`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogger)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hearingscribe.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output (shorthand for --log-level debug)")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().Bool("log-no-color", false, "disable colored log output")

	// Bind logging flags to viper so the logger can start before the
	// config file is loaded
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.no_color", rootCmd.PersistentFlags().Lookup("log-no-color"))
}

// initLogger initializes the logger from the logging flags so startup
// messages are formatted correctly. Commands that run the pipeline
// re-initialize once the merged configuration is available.
func initLogger() {
	cfg := logger.DefaultConfig()
	cfg.Level = viper.GetString("logging.level")
	cfg.Format = viper.GetString("logging.format")
	cfg.NoColor = viper.GetBool("logging.no_color")

	if viper.GetBool("verbose") && cfg.Level == "info" {
		cfg.Level = "debug"
	}

	if err := logger.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, environment variables and
// the given flag overrides into one configuration.
func loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.LoadWithOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if file := loader.GetConfigFile(); file != "" {
		logger.Info().Str("config_file", file).Msg("Loaded configuration file")
	}
	return cfg, nil
}

// rootOverrides carries changed persistent flags into the config so the
// run logger keeps the formatting the user asked for on the command line.
func rootOverrides() map[string]interface{} {
	overrides := map[string]interface{}{}
	pf := rootCmd.PersistentFlags()

	if pf.Changed("log-level") {
		v, _ := pf.GetString("log-level")
		overrides["logging.level"] = v
	}
	if pf.Changed("log-format") {
		v, _ := pf.GetString("log-format")
		overrides["logging.format"] = v
	}
	if pf.Changed("log-no-color") {
		v, _ := pf.GetBool("log-no-color")
		overrides["logging.no_color"] = v
	}
	if v, _ := pf.GetBool("verbose"); v {
		overrides["logging.level"] = "debug"
	}

	return overrides
}

// setupRunLogger re-initializes logging with the merged configuration and
// attaches a per-run log file under the logs folder. The returned closer
// must be called when the run ends.
func setupRunLogger(cfg *config.Config) (func(), string, error) {
	file, path, err := logger.RunFile(cfg.LogsFolder)
	if err != nil {
		return nil, "", err
	}
	if err := logger.Initialize(&cfg.Logging, file); err != nil {
		_ = file.Close()
		return nil, "", err
	}
	return func() { _ = file.Close() }, path, nil
}
