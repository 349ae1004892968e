package transcriber

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// overlapScanChars bounds how far into the boundary texts the
	// duplicate scan looks.
	overlapScanChars = 400
	// minOverlapWords is the shortest word run accepted as a duplicate.
	// Anything shorter is too likely to be a coincidence.
	minOverlapWords = 5
)

// MergeMeta carries document metadata through the merge.
type MergeMeta struct {
	Source      string
	Model       string
	Language    string
	ProcessedAt time.Time
}

// Merge assembles chunk results into a transcript document in chunk
// order. Failed chunks become positional markers in the body so readers
// can see where audio is missing. When consecutive chunks shared overlap
// audio, duplicated boundary text is trimmed from the later chunk.
func Merge(results []ChunkResult, meta MergeMeta) *Document {
	ordered := make([]ChunkResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Spec.Index < ordered[j].Spec.Index
	})

	policy := MergeFull
	var failed []int
	var parts []string
	prevText := ""

	for _, r := range ordered {
		if r.Failed() {
			policy = MergePartial
			failed = append(failed, r.Spec.Index)
			parts = append(parts, fmt.Sprintf("[chunk %d failed: %v]", r.Spec.Index, r.Err))
			// The next chunk's overlap was shared with this failed one,
			// so there is nothing to deduplicate against
			prevText = ""
			continue
		}

		text := strings.TrimSpace(r.Text)
		if text == "" {
			prevText = ""
			continue
		}
		if prevText != "" && r.Spec.Overlap > 0 {
			text = trimOverlap(prevText, text)
		}
		if text != "" {
			parts = append(parts, text)
		}
		prevText = text
	}

	return &Document{
		Source:       meta.Source,
		ProcessedAt:  meta.ProcessedAt,
		Model:        meta.Model,
		Language:     meta.Language,
		Policy:       policy,
		Body:         strings.Join(parts, "\n\n"),
		FailedChunks: failed,
	}
}

// trimOverlap drops from next's head the longest word run that also ends
// prev, provided the run has at least minOverlapWords words. Recognizers
// rarely reproduce overlap audio verbatim, so no confident match means
// no change.
func trimOverlap(prev, next string) string {
	tailWords := strings.Fields(lastChars(prev, overlapScanChars))
	headWords := strings.Fields(firstChars(next, overlapScanChars))

	limit := len(tailWords)
	if len(headWords) < limit {
		limit = len(headWords)
	}

	best := 0
	for n := limit; n >= minOverlapWords; n-- {
		if wordRunsEqual(tailWords[len(tailWords)-n:], headWords[:n]) {
			best = n
			break
		}
	}
	if best == 0 {
		return next
	}

	return strings.TrimSpace(next[wordOffset(next, best):])
}

func wordRunsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// wordOffset returns the byte offset just past the n-th whitespace
// separated word of s.
func wordOffset(s string, n int) int {
	i, words := 0, 0
	for words < n && i < len(s) {
		for i < len(s) {
			r, size := utf8.DecodeRuneInString(s[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		if i >= len(s) {
			break
		}
		for i < len(s) {
			r, size := utf8.DecodeRuneInString(s[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		words++
	}
	return i
}

// lastChars returns the trailing span of s, cut at a rune boundary.
func lastChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

// firstChars returns the leading span of s, cut at a rune boundary.
func firstChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := n
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
