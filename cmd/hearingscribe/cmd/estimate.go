package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearingscribe/hearingscribe/pkg/audio"
	"github.com/hearingscribe/hearingscribe/pkg/transcriber"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate transcription cost without calling the API",
	Long: `Probe every supported recording in the audio folder and price the
whole batch at the configured per-minute rate.

No API key is needed and nothing is uploaded. Unreadable files are
listed so they can be fixed or removed before the paid run.

Examples:
  # Estimate the configured audio folder
  hearingscribe estimate

  # Estimate another folder at a custom rate
  hearingscribe estimate --audio-dir ./hearings --rate 0.006`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().String("audio-dir", "", "folder holding the recordings (default from config)")
	estimateCmd.Flags().Float64("rate", 0, "price per audio minute in dollars")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	overrides := rootOverrides()
	flags := cmd.Flags()

	if flags.Changed("audio-dir") {
		v, _ := flags.GetString("audio-dir")
		overrides["audio_folder"] = v
	}
	if flags.Changed("rate") {
		v, _ := flags.GetFloat64("rate")
		overrides["rate_per_minute"] = v
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	est, err := transcriber.NewService(cfg, nil).Estimate(ctx)
	if err != nil {
		return err
	}

	printEstimate(est, cfg.ChunkLength(), cfg.Overlap())
	return nil
}

// printEstimate renders the priced inventory of a pending run: per file
// its duration, size, how many chunks it will be split into, and its
// share of the cost.
func printEstimate(est *transcriber.RunEstimate, chunkLen, overlap time.Duration) {
	fmt.Printf("\n📊 Estimated cost for %d file(s):\n\n", len(est.Files))

	for _, f := range est.Files {
		chunks := 1
		if specs, err := audio.Segment(f.Duration, chunkLen, overlap); err == nil {
			chunks = len(specs)
		}
		fmt.Printf("   %-40s %10s %8.1f MB %4d chunk(s) %9s\n",
			filepath.Base(f.Path),
			formatClock(f.Duration),
			float64(f.Size)/(1024*1024),
			chunks,
			fmt.Sprintf("$%.2f", f.Duration.Minutes()*est.Cost.RatePerMinute))
	}

	fmt.Printf("\n   Total audio: %.1f minutes (%.1f hours)\n", est.Cost.TotalMinutes, est.Cost.Hours())
	fmt.Printf("   Rate:        $%.4f per minute\n", est.Cost.RatePerMinute)
	fmt.Printf("   Total cost:  $%.2f\n", est.Cost.TotalCost)

	if len(est.Unreadable) > 0 {
		fmt.Println()
		for _, pe := range est.Unreadable {
			fmt.Printf("   ⚠️  unreadable: %s (%v)\n", filepath.Base(pe.Path), pe.Err)
		}
	}
}
