package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/hearingscribe/hearingscribe/pkg/logger"
)

// FFmpegProber reads audio metadata through ffprobe.
type FFmpegProber struct{}

// NewProber creates a new ffprobe-backed prober.
func NewProber() *FFmpegProber {
	return &FFmpegProber{}
}

// Probe extracts metadata from an audio file. Any failure, from a missing
// file to undecodable probe output, comes back as a *ProbeError so callers
// can treat the file as unreadable and move on.
func (p *FFmpegProber) Probe(path string) (*AudioFile, error) {
	log := logger.WithComponent("prober").WithField("file", filepath.Base(path))

	stat, err := os.Stat(path)
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}

	log.Debug().Str("full_path", path).Msg("probing file")
	data, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}

	file := &AudioFile{
		Path:   path,
		Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Size:   stat.Size(),
	}
	if err := parseProbe(data, file); err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}
	if file.Duration <= 0 {
		return nil, &ProbeError{Path: path, Err: errors.New("no duration in probe data")}
	}

	log.Debug().
		Dur("duration", file.Duration).
		Int64("size", file.Size).
		Int("sample_rate", file.SampleRate).
		Int("channels", file.Channels).
		Msg("probe complete")

	return file, nil
}

// parseProbe fills file from ffprobe's JSON output.
func parseProbe(data string, file *AudioFile) error {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
			BitRate  string `json:"bit_rate"`
			Size     string `json:"size"`
		} `json:"format"`
		Streams []struct {
			CodecType  string `json:"codec_type"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}

	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return fmt.Errorf("parse probe JSON: %w", err)
	}

	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err == nil {
			file.Duration = time.Duration(seconds * float64(time.Second))
		}
	}

	if probe.Format.BitRate != "" {
		bitRate, err := strconv.ParseInt(probe.Format.BitRate, 10, 64)
		if err == nil {
			file.BitRate = int(bitRate)
		}
	}

	if probe.Format.Size != "" {
		size, err := strconv.ParseInt(probe.Format.Size, 10, 64)
		if err == nil {
			file.Size = size
		}
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" {
			if stream.SampleRate != "" {
				rate, err := strconv.Atoi(stream.SampleRate)
				if err == nil {
					file.SampleRate = rate
				}
			}
			file.Channels = stream.Channels
			break
		}
	}

	return nil
}
