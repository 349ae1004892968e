package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeTeesRawJSON(t *testing.T) {
	var tee bytes.Buffer

	cfg := &Config{Level: "info", Format: "json", Output: "stderr", Timestamp: true}
	if err := Initialize(cfg, &tee); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	Info().Str("component", "test").Msg("run log line")

	out := tee.String()
	if !strings.Contains(out, `"message":"run log line"`) {
		t.Errorf("tee output missing message: %q", out)
	}
	if !strings.Contains(out, `"component":"test"`) {
		t.Errorf("tee output missing field: %q", out)
	}
}

func TestInitializeInvalidLevelFallsBack(t *testing.T) {
	var tee bytes.Buffer

	cfg := &Config{Level: "chatty", Format: "json", Output: "stderr"}
	if err := Initialize(cfg, &tee); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	Info().Msg("still logging")
	if !strings.Contains(tee.String(), "still logging") {
		t.Errorf("info logging disabled after invalid level: %q", tee.String())
	}
}

func TestRunFile(t *testing.T) {
	testDir, err := os.MkdirTemp("", "logger_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(testDir)

	logsDir := filepath.Join(testDir, "logs")
	file, path, err := RunFile(logsDir)
	if err != nil {
		t.Fatalf("RunFile() error = %v", err)
	}
	defer file.Close()

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "transcribe_") || !strings.HasSuffix(base, ".log") {
		t.Errorf("RunFile() name = %s, want transcribe_*.log", base)
	}

	if _, err := file.WriteString("line\n"); err != nil {
		t.Errorf("run log not writable: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("run log missing on disk: %v", err)
	}
}

func TestFromContext(t *testing.T) {
	if err := Initialize(nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	scoped := WithComponent("pipeline")
	ctx := WithLogger(context.Background(), scoped)

	if got := FromContext(ctx); got != scoped {
		t.Error("FromContext() did not return the stored logger")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext() without stored logger = nil, want global")
	}
}
