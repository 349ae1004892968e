package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		want     bool
	}{
		{
			name:     "mp3 file",
			filePath: "hearing.mp3",
			want:     true,
		},
		{
			name:     "wav file",
			filePath: "hearing.wav",
			want:     true,
		},
		{
			name:     "m4a file",
			filePath: "hearing.m4a",
			want:     true,
		},
		{
			name:     "flac file",
			filePath: "hearing.flac",
			want:     true,
		},
		{
			name:     "ogg file",
			filePath: "hearing.ogg",
			want:     true,
		},
		{
			name:     "uppercase extension",
			filePath: "hearing.MP3",
			want:     true,
		},
		{
			name:     "full path",
			filePath: "/data/audio/hearing.mp3",
			want:     true,
		},
		{
			name:     "text file",
			filePath: "notes.txt",
			want:     false,
		},
		{
			name:     "video file",
			filePath: "hearing.mp4",
			want:     false,
		},
		{
			name:     "no extension",
			filePath: "hearing",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsSupported(tt.filePath)
			if result != tt.want {
				t.Errorf("IsSupported() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestListFiles(t *testing.T) {
	testDir, err := os.MkdirTemp("", "files_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	// Supported, unsupported and nested files
	for _, name := range []string{"b.mp3", "a.wav", "notes.txt", "cover.jpg"} {
		if err := os.WriteFile(filepath.Join(testDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(testDir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(testDir, "nested", "c.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create nested file: %v", err)
	}

	paths, err := ListFiles(testDir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{
		filepath.Join(testDir, "a.wav"),
		filepath.Join(testDir, "b.mp3"),
	}
	if len(paths) != len(want) {
		t.Fatalf("ListFiles() returned %d files, want %d: %v", len(paths), len(want), paths)
	}
	for i, path := range paths {
		if path != want[i] {
			t.Errorf("ListFiles()[%d] = %v, want %v", i, path, want[i])
		}
	}
}

func TestListFilesMissingFolder(t *testing.T) {
	_, err := ListFiles(filepath.Join(os.TempDir(), "does-not-exist-anywhere"))
	if err == nil {
		t.Error("ListFiles() on missing folder should return an error")
	}
}

func TestListFilesEmptyFolder(t *testing.T) {
	testDir, err := os.MkdirTemp("", "files_empty_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	paths, err := ListFiles(testDir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("ListFiles() = %v, want empty", paths)
	}
}
