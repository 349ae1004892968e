package transcriber

import (
	"time"

	"github.com/hearingscribe/hearingscribe/pkg/audio"
	"github.com/hearingscribe/hearingscribe/pkg/cost"
)

// MergePolicy states whether every chunk of a file transcribed cleanly.
type MergePolicy string

const (
	// MergeFull means all chunks succeeded.
	MergeFull MergePolicy = "full"
	// MergePartial means at least one chunk failed and its position is
	// marked in the document body.
	MergePartial MergePolicy = "partial"
)

// ChunkResult is the terminal outcome of one chunk: its text, or the
// error that remained after retries.
type ChunkResult struct {
	Spec audio.ChunkSpec
	Text string
	Err  error
}

// Failed reports whether the chunk produced no usable text.
func (r ChunkResult) Failed() bool {
	return r.Err != nil
}

// Document is the merged transcript of one source recording.
type Document struct {
	Source       string // source file name
	ProcessedAt  time.Time
	Model        string
	Language     string
	Policy       MergePolicy
	Body         string
	FailedChunks []int
}

// FileResult reports one file's trip through the pipeline.
type FileResult struct {
	Source     string
	OutputPath string
	Policy     MergePolicy
	Chunks     []ChunkResult
	Err        error // set when no document could be produced at all
}

// SucceededChunks counts the chunks that transcribed cleanly.
func (r *FileResult) SucceededChunks() int {
	n := 0
	for _, c := range r.Chunks {
		if !c.Failed() {
			n++
		}
	}
	return n
}

// RunEstimate is the priced inventory of a pending run.
type RunEstimate struct {
	Files      []*audio.AudioFile
	Unreadable []*audio.ProbeError
	Cost       cost.Estimate
}

// RunSummary aggregates the outcome of a whole batch run.
type RunSummary struct {
	Started         time.Time
	Elapsed         time.Duration
	FilesAttempted  int
	FilesFull       int
	FilesPartial    int
	FilesFailed     int
	ChunksTotal     int
	ChunksSucceeded int
	EstimatedCost   float64
	Unreadable      []*audio.ProbeError
	Results         []FileResult
}

func (s *RunSummary) add(res FileResult) {
	s.Results = append(s.Results, res)
	s.ChunksTotal += len(res.Chunks)
	s.ChunksSucceeded += res.SucceededChunks()
	switch {
	case res.Err != nil:
		s.FilesFailed++
	case res.Policy == MergePartial:
		s.FilesPartial++
	default:
		s.FilesFull++
	}
}
