package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/hearingscribe/hearingscribe/pkg/logger"
)

// FFmpegExtractor cuts chunks with ffmpeg, re-encoding them to mono
// 16 kHz MP3 at 64 kbps so a ten minute chunk stays well under typical
// upload size ceilings.
type FFmpegExtractor struct{}

// NewExtractor creates a new ffmpeg-backed extractor.
func NewExtractor() *FFmpegExtractor {
	return &FFmpegExtractor{}
}

// Extract writes the window described by spec into destDir as
// <base>_chunk_NNN.mp3 and returns its path. A failed extraction leaves
// no file behind.
func (e *FFmpegExtractor) Extract(src *AudioFile, spec ChunkSpec, destDir string) (string, error) {
	log := logger.WithComponent("extractor").
		WithField("file", filepath.Base(src.Path)).
		WithField("chunk", spec.Index)

	if spec.Start < 0 || spec.End <= spec.Start || spec.End > src.Duration {
		return "", &ExtractionError{
			Source: src.Path,
			Index:  spec.Index,
			Err:    fmt.Errorf("window [%s, %s) outside recording of %s", formatDuration(spec.Start), formatDuration(spec.End), formatDuration(src.Duration)),
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &ExtractionError{Source: src.Path, Index: spec.Index, Err: err}
	}

	base := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	outPath := filepath.Join(destDir, fmt.Sprintf("%s_chunk_%03d.mp3", base, spec.Index))

	log.Debug().
		Str("start", formatDuration(spec.Start)).
		Str("end", formatDuration(spec.End)).
		Str("output", outPath).
		Msg("extracting chunk")

	stream := ffmpeg.Input(src.Path, ffmpeg.KwArgs{
		"ss": formatDuration(spec.Start),
		"t":  formatDuration(spec.Duration()),
	}).Output(outPath, ffmpeg.KwArgs{
		"acodec": "libmp3lame",
		"ab":     "64k",
		"ar":     "16000",
		"ac":     "1",
	})

	if err := stream.OverWriteOutput().ErrorToStdOut().Run(); err != nil {
		_ = os.Remove(outPath)
		return "", &ExtractionError{Source: src.Path, Index: spec.Index, Err: fmt.Errorf("ffmpeg: %w", err)}
	}

	stat, err := os.Stat(outPath)
	if err != nil || stat.Size() == 0 {
		_ = os.Remove(outPath)
		return "", &ExtractionError{Source: src.Path, Index: spec.Index, Err: fmt.Errorf("chunk file not created: %s", outPath)}
	}

	return outPath, nil
}

// formatDuration formats a time.Duration as HH:MM:SS.mmm for ffmpeg.
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}
