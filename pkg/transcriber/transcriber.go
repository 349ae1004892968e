// Package transcriber runs the batch pipeline: probe the audio folder,
// price the run, gate it on confirmation, then chunk, transcribe and
// merge each file in order.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hearingscribe/hearingscribe/pkg/audio"
	"github.com/hearingscribe/hearingscribe/pkg/config"
	"github.com/hearingscribe/hearingscribe/pkg/cost"
	"github.com/hearingscribe/hearingscribe/pkg/logger"
	"github.com/hearingscribe/hearingscribe/pkg/providers"
)

// Run-level failures.
var (
	ErrNoInputFiles  = errors.New("no audio files found")
	ErrAllUnreadable = errors.New("no readable audio files")
	ErrRunDeclined   = errors.New("run declined")
)

// ConfirmFunc decides whether a run may spend money. It receives the
// priced estimate and the files that would be transcribed. Returning
// false stops the run before any service call.
type ConfirmFunc func(est cost.Estimate, files []*audio.AudioFile) (bool, error)

// Service drives the transcription pipeline over one audio folder.
type Service struct {
	cfg       *config.Config
	provider  providers.Provider
	prober    audio.Prober
	extractor audio.Extractor
	confirm   ConfirmFunc
}

// ServiceOption allows customizing the service
type ServiceOption func(*Service)

// WithProber replaces the metadata prober
func WithProber(p audio.Prober) ServiceOption {
	return func(s *Service) {
		s.prober = p
	}
}

// WithExtractor replaces the chunk extractor
func WithExtractor(e audio.Extractor) ServiceOption {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithConfirmFunc installs a confirmation gate. Without one, runs
// proceed as soon as the estimate is logged.
func WithConfirmFunc(f ConfirmFunc) ServiceOption {
	return func(s *Service) {
		s.confirm = f
	}
}

// NewService creates a new pipeline service
func NewService(cfg *config.Config, provider providers.Provider, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:       cfg,
		provider:  provider,
		prober:    audio.NewProber(),
		extractor: audio.NewExtractor(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Estimate probes the audio folder and prices the pending run without
// calling the transcription service. Unreadable files are collected, not
// fatal; an empty folder or a folder with no readable file is.
func (s *Service) Estimate(ctx context.Context) (*RunEstimate, error) {
	log := logger.WithComponent("pipeline")

	paths, err := audio.ListFiles(s.cfg.AudioFolder)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, s.cfg.AudioFolder)
	}

	est := &RunEstimate{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := s.prober.Probe(path)
		if err != nil {
			var pe *audio.ProbeError
			if errors.As(err, &pe) {
				log.Warn().Err(pe.Err).Str("file", filepath.Base(path)).Msg("skipping unreadable file")
				est.Unreadable = append(est.Unreadable, pe)
				continue
			}
			return nil, err
		}
		est.Files = append(est.Files, file)
	}
	if len(est.Files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrAllUnreadable, s.cfg.AudioFolder)
	}

	durations := make([]time.Duration, len(est.Files))
	for i, f := range est.Files {
		durations[i] = f.Duration
	}
	priced, err := cost.Compute(durations, s.cfg.RatePerMinute)
	if err != nil {
		return nil, err
	}
	est.Cost = priced

	return est, nil
}

// Run processes every readable file in the audio folder sequentially.
// Each file always gets a transcript document, partial if chunks failed.
// The returned error is non-nil only for run-fatal conditions: nothing
// to do, a declined confirmation, bad chunking parameters, cancellation
// or an exhausted quota.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	log := logger.WithComponent("pipeline")
	start := time.Now()

	if err := s.cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	est, err := s.Estimate(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("files", len(est.Files)).
		Int("unreadable", len(est.Unreadable)).
		Float64("minutes", est.Cost.TotalMinutes).
		Float64("estimated_cost_usd", est.Cost.TotalCost).
		Msg("run estimate ready")

	if s.confirm != nil {
		ok, err := s.confirm(est.Cost, est.Files)
		if err != nil {
			return nil, fmt.Errorf("confirmation: %w", err)
		}
		if !ok {
			log.Info().Msg("run declined")
			return nil, ErrRunDeclined
		}
	}

	summary := &RunSummary{
		Started:       start,
		EstimatedCost: est.Cost.TotalCost,
		Unreadable:    est.Unreadable,
	}

	var runErr error
	for _, src := range est.Files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		res, fatal := s.processFile(ctx, src)
		summary.add(res)
		if fatal != nil {
			if providers.IsQuota(fatal) {
				log.Error().Err(fatal).Msg("quota exhausted, aborting remaining files")
			}
			runErr = fatal
			break
		}
	}

	summary.FilesAttempted = len(summary.Results)
	summary.Elapsed = time.Since(start)

	log.Info().
		Int("files_attempted", summary.FilesAttempted).
		Int("files_full", summary.FilesFull).
		Int("files_partial", summary.FilesPartial).
		Int("files_failed", summary.FilesFailed).
		Int("chunks_succeeded", summary.ChunksSucceeded).
		Int("chunks_total", summary.ChunksTotal).
		Dur("elapsed", summary.Elapsed).
		Msg("run finished")

	return summary, runErr
}

// RunFile probes and processes a single file. Watch mode feeds files
// through here one at a time.
func (s *Service) RunFile(ctx context.Context, path string) (*FileResult, error) {
	log := logger.WithComponent("pipeline").WithField("file", filepath.Base(path))

	src, err := s.prober.Probe(path)
	if err != nil {
		return nil, err
	}

	priced, err := cost.Compute([]time.Duration{src.Duration}, s.cfg.RatePerMinute)
	if err != nil {
		return nil, err
	}
	log.Info().
		Dur("duration", src.Duration).
		Float64("estimated_cost_usd", priced.TotalCost).
		Msg("transcribing file")

	res, fatal := s.processFile(ctx, src)
	if fatal != nil {
		return &res, fatal
	}
	if res.Err != nil {
		return &res, res.Err
	}
	return &res, nil
}

// processFile runs one recording through segment, extract, transcribe
// and merge. The second return value is non-nil only for conditions that
// must stop the whole run; the file still gets its document written when
// one can be produced.
func (s *Service) processFile(ctx context.Context, src *audio.AudioFile) (FileResult, error) {
	base := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	log := logger.WithComponent("pipeline").WithField("file", filepath.Base(src.Path))
	ctx = logger.WithLogger(ctx, log)

	res := FileResult{Source: src.Path}

	specs, err := audio.Segment(src.Duration, s.cfg.ChunkLength(), s.cfg.Overlap())
	if err != nil {
		// Bad chunking parameters poison every file, stop the run
		res.Err = err
		return res, err
	}

	log.Info().
		Dur("duration", src.Duration).
		Int64("size_bytes", src.Size).
		Int("chunks", len(specs)).
		Msg("processing file")

	scratch := filepath.Join(s.cfg.ChunksFolder, base)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		res.Err = fmt.Errorf("create scratch dir: %w", err)
		return res, nil
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("dir", scratch).Msg("failed to remove scratch dir")
		}
	}()

	results := make([]ChunkResult, 0, len(specs))
	var fatal error
	for _, spec := range specs {
		if fatal == nil {
			if err := ctx.Err(); err != nil {
				fatal = err
			}
		}
		if fatal != nil {
			results = append(results, ChunkResult{Spec: spec, Err: fmt.Errorf("not attempted: %w", fatal)})
			continue
		}

		cr := s.processChunk(ctx, src, spec, scratch)
		results = append(results, cr)

		if cr.Err != nil && providers.IsQuota(cr.Err) {
			fatal = cr.Err
			continue
		}
		if s.cfg.RequestDelay > 0 && spec.Index < len(specs)-1 {
			time.Sleep(s.cfg.RequestDelay)
		}
	}

	doc := Merge(results, MergeMeta{
		Source:      filepath.Base(src.Path),
		Model:       s.cfg.Model,
		Language:    s.cfg.Language,
		ProcessedAt: time.Now(),
	})

	outPath := filepath.Join(s.cfg.TranscriptionsFolder, base+".txt")
	if err := doc.WriteFile(outPath); err != nil {
		log.Error().Err(err).Str("output", outPath).Msg("failed to write transcript")
		res.Err = err
		res.Chunks = results
		return res, fatal
	}

	res.OutputPath = outPath
	res.Policy = doc.Policy
	res.Chunks = results

	log.Info().
		Str("output", outPath).
		Str("policy", string(doc.Policy)).
		Int("chunks_succeeded", res.SucceededChunks()).
		Int("chunks_total", len(results)).
		Msg("transcript written")

	return res, fatal
}

// processChunk extracts one chunk, submits it and always deletes the
// temporary chunk file before returning.
func (s *Service) processChunk(ctx context.Context, src *audio.AudioFile, spec audio.ChunkSpec, scratch string) ChunkResult {
	log := logger.FromContext(ctx).WithField("chunk", spec.Index)

	chunkPath, err := s.extractor.Extract(src, spec, scratch)
	if err != nil {
		log.Error().Err(err).Msg("chunk extraction failed")
		return ChunkResult{Spec: spec, Err: err}
	}
	defer func() {
		if err := os.Remove(chunkPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("chunk_file", chunkPath).Msg("failed to remove chunk file")
		}
	}()

	if stat, err := os.Stat(chunkPath); err == nil && stat.Size() > s.cfg.MaxFileBytes() {
		log.Warn().
			Int64("size_bytes", stat.Size()).
			Int64("limit_bytes", s.cfg.MaxFileBytes()).
			Msg("chunk exceeds upload size ceiling")
	}

	text, err := s.provider.Transcribe(ctx, &providers.Request{
		FilePath:       chunkPath,
		Language:       s.cfg.Language,
		Prompt:         s.cfg.Prompt,
		ResponseFormat: s.cfg.ResponseFormat,
	})
	if err != nil {
		log.Error().Err(err).Msg("chunk transcription failed")
		return ChunkResult{Spec: spec, Err: err}
	}

	log.Debug().Int("text_length", len(text)).Msg("chunk transcribed")
	return ChunkResult{Spec: spec, Text: text}
}
