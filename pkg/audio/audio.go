// Package audio provides probing, segmentation and chunk extraction for
// long-form audio recordings.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// AudioFile holds the probed metadata of a source recording.
type AudioFile struct {
	Path       string
	Format     string // container extension without the dot
	Duration   time.Duration
	Size       int64 // bytes
	BitRate    int   // bits per second
	SampleRate int
	Channels   int
}

// ChunkSpec describes one time window of a source recording. Start is
// inclusive, End exclusive. Overlap is the leading span shared with the
// previous chunk; it is zero for the first chunk.
type ChunkSpec struct {
	Index   int
	Start   time.Duration
	End     time.Duration
	Overlap time.Duration
}

// Duration returns the length of the chunk window.
func (c ChunkSpec) Duration() time.Duration {
	return c.End - c.Start
}

// Segmentation parameter errors.
var (
	ErrDurationNotPositive    = errors.New("audio: duration must be positive")
	ErrChunkLengthNotPositive = errors.New("audio: chunk length must be positive")
	ErrOverlapNegative        = errors.New("audio: overlap cannot be negative")
	ErrOverlapTooLarge        = errors.New("audio: overlap must be smaller than chunk length")
)

// ProbeError reports a file that could not be read or decoded during
// metadata extraction.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a chunk that could not be cut from its source.
type ExtractionError struct {
	Source string
	Index  int
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract chunk %d of %s: %v", e.Index, e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Prober extracts metadata from audio files.
type Prober interface {
	// Probe reads the file's metadata. Failures are reported as *ProbeError.
	Probe(path string) (*AudioFile, error)
}

// Extractor cuts chunk windows out of a source recording into standalone
// audio files.
type Extractor interface {
	// Extract writes the chunk described by spec into destDir and returns
	// the path of the created file. The caller owns deleting it.
	Extract(src *AudioFile, spec ChunkSpec, destDir string) (string, error)
}
