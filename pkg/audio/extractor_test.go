package audio

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestExtractWindowValidation(t *testing.T) {
	testDir, err := os.MkdirTemp("", "extractor_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	extractor := NewExtractor()
	src := &AudioFile{
		Path:     "/recordings/hearing.mp3",
		Duration: 25 * time.Minute,
	}

	tests := []struct {
		name string
		spec ChunkSpec
	}{
		{
			name: "negative start",
			spec: ChunkSpec{Index: 0, Start: -time.Second, End: 10 * time.Minute},
		},
		{
			name: "end before start",
			spec: ChunkSpec{Index: 1, Start: 10 * time.Minute, End: 5 * time.Minute},
		},
		{
			name: "empty window",
			spec: ChunkSpec{Index: 2, Start: 10 * time.Minute, End: 10 * time.Minute},
		},
		{
			name: "end beyond recording",
			spec: ChunkSpec{Index: 3, Start: 20 * time.Minute, End: 30 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(src, tt.spec, testDir)
			if err == nil {
				t.Fatal("Extract() succeeded, want window validation error")
			}

			var extErr *ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("Extract() error = %T, want *ExtractionError", err)
			}
			if extErr.Index != tt.spec.Index {
				t.Errorf("ExtractionError.Index = %d, want %d", extErr.Index, tt.spec.Index)
			}
			if extErr.Source != src.Path {
				t.Errorf("ExtractionError.Source = %v, want %v", extErr.Source, src.Path)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{
			name:     "zero duration",
			duration: 0,
			want:     "00:00:00.000",
		},
		{
			name:     "minutes and seconds",
			duration: 2*time.Minute + 30*time.Second,
			want:     "00:02:30.000",
		},
		{
			name:     "hours, minutes, seconds",
			duration: 1*time.Hour + 23*time.Minute + 45*time.Second,
			want:     "01:23:45.000",
		},
		{
			name:     "with milliseconds",
			duration: 1*time.Minute + 30*time.Second + 500*time.Millisecond,
			want:     "00:01:30.500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatDuration(tt.duration)
			if result != tt.want {
				t.Errorf("formatDuration() = %v, want %v", result, tt.want)
			}
		})
	}
}

func BenchmarkFormatDuration(b *testing.B) {
	duration := 1*time.Hour + 23*time.Minute + 45*time.Second + 678*time.Millisecond

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formatDuration(duration)
	}
}
