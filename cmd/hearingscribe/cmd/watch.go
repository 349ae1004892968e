package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearingscribe/hearingscribe/pkg/logger"
	"github.com/hearingscribe/hearingscribe/pkg/providers/openai"
	"github.com/hearingscribe/hearingscribe/pkg/transcriber"
	"github.com/hearingscribe/hearingscribe/pkg/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a folder and transcribe recordings as they arrive",
	Long: `Watch a folder for new audio files and run each one through the
transcription pipeline as soon as it has finished copying.

Files are processed one at a time in arrival order. A file is admitted
once its size has been stable for the stability window, so half-copied
uploads are never transcribed. The folder is also rescanned periodically
to catch files whose filesystem events were missed. If the API reports
an exhausted quota the watcher shuts down instead of burning through
the rest of the queue.

Examples:
  # Watch the configured audio folder
  hearingscribe watch

  # Watch a drop folder
  hearingscribe watch ./inbox

  # Skip the files already present at startup
  hearingscribe watch --no-existing

  # Rescan every two minutes
  hearingscribe watch --interval 2m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// Watch options
	watchCmd.Flags().Duration("interval", 30*time.Second, "rescan interval for missed files")
	watchCmd.Flags().Duration("stability-wait", 2*time.Second, "time a file's size must stay unchanged before processing")
	watchCmd.Flags().Bool("no-existing", false, "skip processing existing files on startup")

	// Output options
	watchCmd.Flags().String("output-dir", "", "folder for transcript documents")
	watchCmd.Flags().String("language", "", "spoken language code (es, en, ...)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")

	overrides := rootOverrides()
	flags := cmd.Flags()

	if flags.Changed("output-dir") {
		v, _ := flags.GetString("output-dir")
		overrides["transcriptions_folder"] = v
	}
	if flags.Changed("language") {
		v, _ := flags.GetString("language")
		overrides["language"] = v
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	watchDir := cfg.AudioFolder
	if len(args) == 1 {
		watchDir = args[0]
	}

	// Validate directory
	info, err := os.Stat(watchDir)
	if err != nil {
		return fmt.Errorf("invalid watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path must be a directory")
	}

	if cfg.APIKey == "" {
		log.Error().Msg("API key is required")
		return fmt.Errorf("API key is required. Set OPENAI_API_KEY or api_key in the config file")
	}

	closeLog, logPath, err := setupRunLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info().Str("run_log", logPath).Msg("Logging this session to file")

	provider := openai.NewProvider(cfg.APIKey,
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithRetries(cfg.Retries),
	)

	// No confirmation prompt in watch mode, files are priced as they arrive
	svc := transcriber.NewService(cfg, provider)

	wcfg := watcher.DefaultConfig()
	wcfg.Dir = watchDir
	wcfg.RescanInterval, _ = flags.GetDuration("interval")
	wcfg.StabilityWait, _ = flags.GetDuration("stability-wait")
	noExisting, _ := flags.GetBool("no-existing")
	wcfg.ProcessExisting = !noExisting

	w, err := watcher.New(wcfg, svc)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("\n👀 Watching directory: %s\n", watchDir)
	fmt.Printf("   Output:    %s\n", cfg.TranscriptionsFolder)
	fmt.Printf("   Rescan:    %v\n", wcfg.RescanInterval)
	fmt.Printf("   Stability: %v\n", wcfg.StabilityWait)
	fmt.Println("\nPress Ctrl+C to stop watching...")

	select {
	case <-ctx.Done():
		fmt.Println("\n\n🛑 Shutting down...")
	case <-w.Done():
		fmt.Println("\n\n🛑 Watcher stopped.")
	}

	if err := w.Stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping watcher")
	}

	// Display final stats
	stats := w.Stats()
	fmt.Printf("\n📊 Final Statistics:\n")
	fmt.Printf("   Full:     %d files\n", stats.Full)
	fmt.Printf("   Partial:  %d files\n", stats.Partial)
	fmt.Printf("   Failed:   %d files\n", stats.Failed)
	fmt.Printf("   Duration: %v\n", time.Since(stats.Started).Round(time.Second))

	return w.Err()
}
