package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearingscribe/hearingscribe/pkg/audio"
	"github.com/hearingscribe/hearingscribe/pkg/cost"
	"github.com/hearingscribe/hearingscribe/pkg/logger"
	"github.com/hearingscribe/hearingscribe/pkg/providers/openai"
	"github.com/hearingscribe/hearingscribe/pkg/transcriber"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe every recording in the audio folder",
	Long: `Transcribe every supported recording in the audio folder into a text
transcript, one file at a time.

Recordings longer than the chunk duration are split into overlapping
chunks, each chunk is transcribed through the OpenAI API with bounded
retries, and the pieces are merged back into a single document. Chunks
that keep failing are marked by position in the transcript instead of
silently dropping audio. The estimated cost is shown before any API
call is made.

Examples:
  # Transcribe the configured audio folder
  hearingscribe transcribe

  # Point at different folders
  hearingscribe transcribe --audio-dir ./hearings --output-dir ./transcripts

  # Skip the confirmation prompt (cron, CI)
  hearingscribe transcribe --yes

  # Only show what the batch would cost
  hearingscribe transcribe --dry-run

  # Shorter chunks for unreliable connections
  hearingscribe transcribe --chunk-duration 5 --chunk-overlap 15`,
	Args: cobra.NoArgs,
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	// Folder options
	transcribeCmd.Flags().String("audio-dir", "", "folder holding the recordings (default from config)")
	transcribeCmd.Flags().String("output-dir", "", "folder for transcript documents")

	// Transcription options
	transcribeCmd.Flags().String("language", "", "spoken language code (es, en, ...)")
	transcribeCmd.Flags().StringP("prompt", "p", "", "transcription prompt passed to the model")
	transcribeCmd.Flags().String("prompt-file", "", "file containing the transcription prompt")
	transcribeCmd.Flags().String("model", "", "transcription model name")

	// Chunking options
	transcribeCmd.Flags().Int("chunk-duration", 0, "chunk duration in minutes")
	transcribeCmd.Flags().Int("chunk-overlap", 0, "chunk overlap in seconds")

	// Run options
	transcribeCmd.Flags().BoolP("yes", "y", false, "skip the cost confirmation prompt")
	transcribeCmd.Flags().Bool("dry-run", false, "show the estimate and exit without transcribing")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("transcribe")

	overrides, err := transcribeOverrides(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Dry runs only probe and price, no API key needed
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		est, err := transcriber.NewService(cfg, nil).Estimate(ctx)
		if err != nil {
			return err
		}
		printEstimate(est, cfg.ChunkLength(), cfg.Overlap())
		return nil
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
	log.Info().Str("run_log", logPath).Msg("Logging this run to file")

	provider := openai.NewProvider(cfg.APIKey,
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithRetries(cfg.Retries),
	)
	log.Info().Str("provider", provider.Name()).Str("model", cfg.Model).Msg("Initialized transcription provider")

	var opts []transcriber.ServiceOption
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		opts = append(opts, transcriber.WithConfirmFunc(confirmRun))
	}
	svc := transcriber.NewService(cfg, provider, opts...)

	summary, err := svc.Run(ctx)
	if summary != nil {
		printSummary(summary)
	}
	if errors.Is(err, transcriber.ErrRunDeclined) {
		fmt.Println("Processing cancelled.")
		return nil
	}
	return err
}

// transcribeOverrides turns the changed flags into config overrides.
func transcribeOverrides(cmd *cobra.Command) (map[string]interface{}, error) {
	overrides := rootOverrides()
	flags := cmd.Flags()

	if flags.Changed("audio-dir") {
		v, _ := flags.GetString("audio-dir")
		overrides["audio_folder"] = v
	}
	if flags.Changed("output-dir") {
		v, _ := flags.GetString("output-dir")
		overrides["transcriptions_folder"] = v
	}
	if flags.Changed("language") {
		v, _ := flags.GetString("language")
		overrides["language"] = v
	}
	if flags.Changed("model") {
		v, _ := flags.GetString("model")
		overrides["model"] = v
	}
	if flags.Changed("chunk-duration") {
		v, _ := flags.GetInt("chunk-duration")
		overrides["chunk_duration"] = v
	}
	if flags.Changed("chunk-overlap") {
		v, _ := flags.GetInt("chunk-overlap")
		overrides["chunk_overlap"] = v
	}

	prompt, err := getCustomPrompt(cmd)
	if err != nil {
		return nil, err
	}
	if prompt != "" {
		overrides["prompt"] = prompt
	}

	return overrides, nil
}

func getCustomPrompt(cmd *cobra.Command) (string, error) {
	// Check direct prompt flag
	if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
		return prompt, nil
	}

	// Check prompt file flag
	if promptFile, _ := cmd.Flags().GetString("prompt-file"); promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return "", nil
}

// confirmRun shows the priced inventory and asks before any API spend.
func confirmRun(est cost.Estimate, files []*audio.AudioFile) (bool, error) {
	fmt.Printf("\n📊 Estimated cost for %d file(s):\n\n", len(files))
	printPricedFiles(files, est)

	fmt.Print("\nProceed with transcription? [y/N]: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		// No interactive stdin, treat as declined
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// printPricedFiles lists each recording with its duration and cost share.
func printPricedFiles(files []*audio.AudioFile, est cost.Estimate) {
	for _, f := range files {
		fmt.Printf("   %-40s %10s %9s\n",
			filepath.Base(f.Path),
			formatClock(f.Duration),
			fmt.Sprintf("$%.2f", f.Duration.Minutes()*est.RatePerMinute))
	}
	fmt.Printf("\n   Total audio: %.1f minutes (%.1f hours)\n", est.TotalMinutes, est.Hours())
	fmt.Printf("   Rate:        $%.4f per minute\n", est.RatePerMinute)
	fmt.Printf("   Total cost:  $%.2f\n", est.TotalCost)
}

func printSummary(s *transcriber.RunSummary) {
	fmt.Printf("\n📊 Run summary:\n")
	for _, res := range s.Results {
		switch {
		case res.Err != nil:
			fmt.Printf("   ❌ %s: %v\n", filepath.Base(res.Source), res.Err)
		case res.Policy == transcriber.MergePartial:
			fmt.Printf("   ⚠️  %s -> %s (%d/%d chunks)\n",
				filepath.Base(res.Source), res.OutputPath, res.SucceededChunks(), len(res.Chunks))
		default:
			fmt.Printf("   ✅ %s -> %s\n", filepath.Base(res.Source), res.OutputPath)
		}
	}
	fmt.Printf("\n   Attempted: %d files (%d full, %d partial, %d failed)\n",
		s.FilesAttempted, s.FilesFull, s.FilesPartial, s.FilesFailed)
	fmt.Printf("   Chunks:    %d/%d transcribed\n", s.ChunksSucceeded, s.ChunksTotal)
	fmt.Printf("   Estimated cost: $%.2f\n", s.EstimatedCost)
	fmt.Printf("   Elapsed:   %v\n", s.Elapsed.Round(time.Second))
}

// formatClock renders a duration as HH:MM:SS.
func formatClock(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
