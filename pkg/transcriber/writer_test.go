package transcriber

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDocumentRender(t *testing.T) {
	processedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "full document with language",
			doc: Document{
				Source:      "hearing.mp3",
				ProcessedAt: processedAt,
				Model:       "whisper-1",
				Language:    "es",
				Policy:      MergeFull,
				Body:        "Hearing called to order.",
			},
			want: "# Transcript of hearing.mp3\n" +
				"# Date: 2026-03-14 09:30:00\n" +
				"# Model: whisper-1\n" +
				"# Language: es\n" +
				"\n" +
				"Hearing called to order.\n",
		},
		{
			name: "partial document lists failed chunks",
			doc: Document{
				Source:       "markup.wav",
				ProcessedAt:  processedAt,
				Model:        "whisper-1",
				Policy:       MergePartial,
				Body:         "Opening.\n\n[chunk 1 failed: boom]",
				FailedChunks: []int{1, 3},
			},
			want: "# Transcript of markup.wav\n" +
				"# Date: 2026-03-14 09:30:00\n" +
				"# Model: whisper-1\n" +
				"# Failed chunks: 1, 3\n" +
				"\n" +
				"Opening.\n\n[chunk 1 failed: boom]\n",
		},
		{
			name: "empty body keeps header",
			doc: Document{
				Source:      "silent.mp3",
				ProcessedAt: processedAt,
				Model:       "whisper-1",
				Policy:      MergeFull,
			},
			want: "# Transcript of silent.mp3\n" +
				"# Date: 2026-03-14 09:30:00\n" +
				"# Model: whisper-1\n" +
				"\n",
		},
		{
			name: "newline terminated body is not doubled",
			doc: Document{
				Source:      "hearing.mp3",
				ProcessedAt: processedAt,
				Model:       "whisper-1",
				Policy:      MergeFull,
				Body:        "Already terminated.\n",
			},
			want: "# Transcript of hearing.mp3\n" +
				"# Date: 2026-03-14 09:30:00\n" +
				"# Model: whisper-1\n" +
				"\n" +
				"Already terminated.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentWriteFile(t *testing.T) {
	testDir, err := os.MkdirTemp("", "writer_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	doc := Document{
		Source:      "hearing.mp3",
		ProcessedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Model:       "whisper-1",
		Policy:      MergeFull,
		Body:        "Hearing called to order.",
	}

	path := filepath.Join(testDir, "out", "nested", "hearing.txt")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read transcript: %v", err)
	}
	if string(data) != doc.Render() {
		t.Errorf("WriteFile() content = %q, want %q", string(data), doc.Render())
	}
}

func TestDocumentWriteFileBadPath(t *testing.T) {
	testDir, err := os.MkdirTemp("", "writer_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	blocker := filepath.Join(testDir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	doc := Document{Source: "hearing.mp3", Model: "whisper-1", Policy: MergeFull}
	if err := doc.WriteFile(filepath.Join(blocker, "hearing.txt")); err == nil {
		t.Error("WriteFile() expected error for path under a regular file")
	}
}
