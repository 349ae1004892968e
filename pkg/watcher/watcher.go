// Package watcher feeds newly arriving audio files through the
// transcription pipeline, one file at a time.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hearingscribe/hearingscribe/pkg/audio"
	"github.com/hearingscribe/hearingscribe/pkg/logger"
	"github.com/hearingscribe/hearingscribe/pkg/providers"
	"github.com/hearingscribe/hearingscribe/pkg/transcriber"
)

// Pipeline processes one audio file end to end.
type Pipeline interface {
	RunFile(ctx context.Context, path string) (*transcriber.FileResult, error)
}

// Config holds watch mode settings.
type Config struct {
	// Dir is the folder to watch. Subdirectories are ignored.
	Dir string

	// StabilityWait is how long a file's size must stay unchanged
	// before it counts as fully copied.
	StabilityWait time.Duration

	// RescanInterval is how often the folder is rescanned to catch
	// files whose events were missed.
	RescanInterval time.Duration

	// ProcessExisting queues the files already in the folder at startup.
	ProcessExisting bool
}

// DefaultConfig returns default watch settings
func DefaultConfig() Config {
	return Config{
		StabilityWait:   2 * time.Second,
		RescanInterval:  30 * time.Second,
		ProcessExisting: true,
	}
}

// Stats counts watch session outcomes.
type Stats struct {
	Started time.Time
	Full    int
	Partial int
	Failed  int
}

// Watcher watches a folder and runs each admitted file through the
// pipeline sequentially, in arrival order.
type Watcher struct {
	cfg      Config
	pipeline Pipeline
	tracker  *Tracker
	fsw      *fsnotify.Watcher

	queue  chan string
	stopCh chan struct{}
	done   chan struct{}

	producers sync.WaitGroup
	consumer  sync.WaitGroup
	stopOnce  sync.Once

	mu     sync.Mutex
	stats  Stats
	runErr error
}

// New creates a watcher for cfg.Dir
func New(cfg Config, pipeline Pipeline) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if cfg.StabilityWait <= 0 {
		cfg.StabilityWait = 2 * time.Second
	}
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = 30 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		pipeline: pipeline,
		tracker:  NewTracker(),
		fsw:      fsw,
		queue:    make(chan string, 64),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the loops are running; wait on
// Done for an internally initiated stop and call Stop to shut down.
func (w *Watcher) Start(ctx context.Context) error {
	log := logger.WithComponent("watcher")

	if err := w.fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	w.mu.Lock()
	w.stats.Started = time.Now()
	w.mu.Unlock()

	w.consumer.Add(1)
	go w.processLoop(ctx)

	w.producers.Add(1)
	go w.watchLoop(ctx)

	if w.cfg.ProcessExisting {
		w.producers.Add(1)
		go func() {
			defer w.producers.Done()
			w.scanFolder()
		}()
	}

	log.Info().
		Str("directory", w.cfg.Dir).
		Dur("stability_wait", w.cfg.StabilityWait).
		Bool("process_existing", w.cfg.ProcessExisting).
		Msg("watcher started")

	return nil
}

// Stop shuts the watcher down and waits for in-flight work to finish.
// Safe to call more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		log := logger.WithComponent("watcher")
		log.Info().Msg("stopping watcher")

		close(w.stopCh)
		if err := w.fsw.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing file watcher")
		}
		w.producers.Wait()
		close(w.queue)
		w.consumer.Wait()
		close(w.done)

		log.Info().Msg("watcher stopped")
	})
	return nil
}

// Done is closed when the watcher has fully stopped, including a stop it
// initiated itself after quota exhaustion.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Err returns the error that stopped the watcher, if any.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runErr
}

// Stats returns a snapshot of the session counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// watchLoop dispatches file system events and periodic rescans.
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.producers.Done()
	log := logger.WithComponent("watcher")

	ticker := time.NewTicker(w.cfg.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.admit(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		case <-ticker.C:
			// Catch files whose events were missed
			w.scanFolder()
		}
	}
}

// scanFolder admits every supported file currently in the folder.
func (w *Watcher) scanFolder() {
	paths, err := audio.ListFiles(w.cfg.Dir)
	if err != nil {
		logger.WithComponent("watcher").Warn().Err(err).Msg("folder scan failed")
		return
	}
	for _, path := range paths {
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.admit(path)
	}
}

// admit queues path once it looks like a complete audio file. Paths are
// claimed before queueing so duplicate events cannot queue a file twice.
func (w *Watcher) admit(path string) {
	log := logger.WithComponent("watcher").WithField("file", filepath.Base(path))

	if !audio.IsSupported(path) {
		return
	}
	if w.tracker.IsClaimed(path) {
		return
	}
	if !w.waitStable(path) {
		log.Debug().Msg("file not stable yet")
		return
	}
	if !w.tracker.TryClaim(path) {
		return
	}

	select {
	case w.queue <- path:
		log.Info().Msg("file queued")
	case <-w.stopCh:
		w.tracker.Forget(path)
	default:
		// Queue full, the next rescan will pick it up
		w.tracker.Forget(path)
		log.Warn().Msg("queue full, deferring file")
	}
}

// waitStable waits until the file's size stops changing, the best
// available signal that a copy into the folder has finished.
func (w *Watcher) waitStable(path string) bool {
	const checks = 5

	var lastSize int64 = -1
	for i := 0; i < checks; i++ {
		stat, err := os.Stat(path)
		if err != nil {
			return false
		}
		if stat.Size() > 0 && stat.Size() == lastSize {
			return true
		}
		lastSize = stat.Size()

		select {
		case <-time.After(w.cfg.StabilityWait):
		case <-w.stopCh:
			return false
		}
	}
	return false
}

// processLoop is the single consumer: files run through the pipeline one
// at a time, in arrival order.
func (w *Watcher) processLoop(ctx context.Context) {
	defer w.consumer.Done()
	log := logger.WithComponent("watcher")

	for path := range w.queue {
		select {
		case <-w.stopCh:
			// Draining, the session is over
			continue
		default:
		}

		log.Info().Str("file", filepath.Base(path)).Msg("processing file")
		res, err := w.pipeline.RunFile(ctx, path)
		w.record(res)

		switch {
		case err == nil:
		case providers.IsQuota(err):
			log.Error().Err(err).Msg("quota exhausted, stopping watcher")
			w.setErr(err)
			go func() {
				_ = w.Stop()
			}()
		default:
			log.Error().Err(err).Str("file", filepath.Base(path)).Msg("file processing failed")
		}
	}
}

// record updates the session counters. A file counts by its written
// document when one exists, even if the run also returned an error.
func (w *Watcher) record(res *transcriber.FileResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case res != nil && res.OutputPath != "":
		if res.Policy == transcriber.MergePartial {
			w.stats.Partial++
		} else {
			w.stats.Full++
		}
	default:
		w.stats.Failed++
	}
}

func (w *Watcher) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.runErr == nil {
		w.runErr = err
	}
}
