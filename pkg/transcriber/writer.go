package transcriber

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Render produces the on-disk form of the document: a commented header
// with provenance, then the body. Partial documents list their failed
// chunk indices in the header.
func (d *Document) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transcript of %s\n", d.Source)
	fmt.Fprintf(&b, "# Date: %s\n", d.ProcessedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "# Model: %s\n", d.Model)
	if d.Language != "" {
		fmt.Fprintf(&b, "# Language: %s\n", d.Language)
	}
	if d.Policy == MergePartial {
		fmt.Fprintf(&b, "# Failed chunks: %s\n", joinIndices(d.FailedChunks))
	}
	b.WriteString("\n")

	b.WriteString(d.Body)
	if d.Body != "" && !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

// WriteFile renders the document to path, creating parent directories as
// needed.
func (d *Document) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(d.Render()), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
