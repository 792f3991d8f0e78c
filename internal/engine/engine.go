package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"media-dedup/internal/hashing"
	"media-dedup/internal/logging"
	"media-dedup/internal/mediatypes"
	"media-dedup/internal/metrics"
	"media-dedup/internal/sampler"
	"media-dedup/internal/store"
	"media-dedup/internal/walker"
	"media-dedup/internal/workers"
)

// Engine drives the scan pipeline against one catalog store.
type Engine struct {
	store *store.Store
}

// New creates an engine writing to st.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Store exposes the underlying catalog for query callers.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Progress is the scan progress snapshot delivered to callbacks.
// Counters are monotonic within one run; totals are zero unless a
// pre-scan supplied them.
type Progress struct {
	FilesSeen    int64  `json:"filesSeen"`
	FilesHashed  int64  `json:"filesHashed"`
	FilesSkipped int64  `json:"filesSkipped"`
	BytesSeen    int64  `json:"bytesSeen"`
	TotalFiles   int64  `json:"totalFiles"`
	TotalBytes   int64  `json:"totalBytes"`
	CurrentPath  string `json:"currentPath"`
	CurrentStep  string `json:"currentStep"`
}

// Summary is the final accounting of one scan run.
type Summary struct {
	FilesSeen    int64         `json:"filesSeen"`
	FilesHashed  int64         `json:"filesHashed"`
	FilesSkipped int64         `json:"filesSkipped"`
	BytesSeen    int64         `json:"bytesSeen"`
	Duration     time.Duration `json:"duration"`
}

// Prescan counts files and bytes under root for progress calibration.
// If the token is cancelled mid-walk, the partial totals are returned
// together with ErrCancelled.
func (e *Engine) Prescan(root string, token *CancelToken, onProgress func(walker.PrescanProgress)) (walker.Totals, error) {
	if err := validateRoot(root); err != nil {
		return walker.Totals{}, err
	}

	totals, err := walker.Prescan(root, token.Cancelled, onProgress)
	if err != nil {
		return totals, err
	}
	if token.Cancelled() {
		return totals, ErrCancelled
	}
	return totals, nil
}

// reporter serializes progress callbacks while letting the pipeline's
// goroutines bump counters without contention.
type reporter struct {
	mu sync.Mutex
	cb func(Progress)

	filesSeen    atomic.Int64
	filesHashed  atomic.Int64
	filesSkipped atomic.Int64
	bytesSeen    atomic.Int64

	totalFiles int64
	totalBytes int64
}

func (r *reporter) emit(path, step string) {
	if r.cb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cb(Progress{
		FilesSeen:    r.filesSeen.Load(),
		FilesHashed:  r.filesHashed.Load(),
		FilesSkipped: r.filesSkipped.Load(),
		BytesSeen:    r.bytesSeen.Load(),
		TotalFiles:   r.totalFiles,
		TotalBytes:   r.totalBytes,
		CurrentPath:  path,
		CurrentStep:  step,
	})
}

func (r *reporter) summary(elapsed time.Duration) Summary {
	return Summary{
		FilesSeen:    r.filesSeen.Load(),
		FilesHashed:  r.filesHashed.Load(),
		FilesSkipped: r.filesSkipped.Load(),
		BytesSeen:    r.bytesSeen.Load(),
		Duration:     elapsed,
	}
}

// fileOutput is one processed file headed for the store writer.
type fileOutput struct {
	rec    *store.FileRecord
	snaps  []store.SnapshotRecord
	hashed bool
}

// Scan walks root, hashes and fingerprints every regular file, and
// persists the results. Files fan out to a worker pool for hashing;
// a single writer serializes the store transactions, one per file.
//
// Cancellation is cooperative at file boundaries: in-flight files
// finish and are persisted, no new files start, the fileset status
// becomes "incomplete", and ErrCancelled is returned alongside the
// summary of the work that did happen. totals may be nil when no
// pre-scan ran.
func (e *Engine) Scan(ctx context.Context, root string, opts Options, token *CancelToken, totals *walker.Totals, onProgress func(Progress)) (Summary, error) {
	start := time.Now()

	if err := validateRoot(root); err != nil {
		return Summary{}, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: root %s: %v", ErrInvalidArgument, root, err)
	}
	opts = opts.normalized()

	// A fresh scan re-describes the fileset wholesale, same as pointing
	// the engine at a new tree would.
	if err := e.store.SetFilesetMetadata(ctx, &store.FilesetMetadata{
		Name:     filepath.Base(absRoot),
		RootPath: absRoot,
	}); err != nil {
		return Summary{}, fmt.Errorf("recording fileset metadata: %w", err)
	}
	if err := e.store.SetFilesetStatus(ctx, store.StatusScanning); err != nil {
		return Summary{}, fmt.Errorf("recording fileset status: %w", err)
	}

	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	rep := &reporter{cb: onProgress}
	if totals != nil {
		rep.totalFiles = totals.Files
		rep.totalBytes = totals.Bytes
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = workers.ForMixed(0)
	}
	logging.Info("scanning %s with %d workers", absRoot, numWorkers)

	pipeCtx, stopPipe := context.WithCancel(ctx)
	defer stopPipe()

	jobs := make(chan walker.Entry, 256)
	results := make(chan fileOutput, 256)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				out := e.processFile(pipeCtx, entry, opts, rep)
				select {
				case results <- out:
				case <-pipeCtx.Done():
					return
				}
			}
		}()
	}

	// Single writer: every file lands in its own transaction, so a
	// cancelled or crashed scan leaves a valid prefix, never a torn row.
	var writeErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for out := range results {
			if writeErr != nil {
				continue
			}
			var err error
			if len(out.snaps) > 0 {
				err = e.store.PutFileWithSnapshots(ctx, out.rec, out.snaps)
			} else {
				_, err = e.store.UpsertFile(ctx, out.rec)
			}
			if err != nil {
				writeErr = fmt.Errorf("persisting %s: %w", out.rec.Path, err)
				stopPipe()
				continue
			}
			if out.hashed {
				rep.filesHashed.Add(1)
			}
			metrics.ScanFilesProcessed.Inc()
			rep.emit(out.rec.Path, "writing")
		}
	}()

	cancelled := func() bool {
		return token.Cancelled() || pipeCtx.Err() != nil
	}
	walkErr := walker.Walk(absRoot, cancelled,
		func(path string, reason error) {
			rep.filesSkipped.Add(1)
			metrics.ScanFilesSkipped.WithLabelValues("unreadable").Inc()
		},
		func(entry walker.Entry) error {
			rep.filesSeen.Add(1)
			rep.bytesSeen.Add(entry.Size)
			select {
			case jobs <- entry:
			case <-pipeCtx.Done():
			}
			return nil
		})

	close(jobs)
	wg.Wait()
	close(results)
	<-writerDone

	elapsed := time.Since(start)
	summary := rep.summary(elapsed)

	outcome := func(status, metric string, err error) (Summary, error) {
		if statusErr := e.store.SetFilesetStatus(context.WithoutCancel(ctx), status); statusErr != nil {
			logging.Error("recording fileset status %q: %v", status, statusErr)
		}
		metrics.ScanRunsTotal.WithLabelValues(metric).Inc()
		return summary, err
	}

	switch {
	case writeErr != nil:
		return outcome(store.StatusIncomplete, "failed", writeErr)
	case walkErr != nil:
		return outcome(store.StatusIncomplete, "failed", walkErr)
	case token.Cancelled() || ctx.Err() != nil:
		logging.Info("scan cancelled after %d files", summary.FilesSeen)
		return outcome(store.StatusIncomplete, "cancelled", ErrCancelled)
	}

	if err := e.store.Checkpoint(ctx); err != nil {
		logging.Warn("checkpoint after scan: %v", err)
	}
	metrics.ScanLastRunTimestamp.SetToCurrentTime()
	metrics.ScanLastRunDuration.Set(elapsed.Seconds())
	logging.Info("scan complete: %d files seen, %d hashed, %d skipped in %v",
		summary.FilesSeen, summary.FilesHashed, summary.FilesSkipped, elapsed)
	return outcome(store.StatusCompleted, "completed", nil)
}

// processFile computes everything the options ask for on one file.
// Failures here are skips, never scan aborts.
func (e *Engine) processFile(ctx context.Context, entry walker.Entry, opts Options, rep *reporter) fileOutput {
	rec := &store.FileRecord{
		Path:       entry.RelPath,
		SizeBytes:  entry.Size,
		ModifiedAt: entry.ModTime.Unix(),
		FileType:   entry.Type,
	}

	// Hard-linked files are inventoried but not hashed: their content is
	// some other record's content, and hashing them would double-count
	// every link as a duplicate.
	if isHardLinked(entry.Path) {
		logging.Debug("recording linked file without hashes: %s", entry.RelPath)
		return fileOutput{rec: rec}
	}

	out := fileOutput{rec: rec}

	if opts.HashFiles {
		rep.emit(entry.RelPath, "hashing")
		digest, err := hashing.HashFile(entry.Path)
		if err != nil {
			rep.filesSkipped.Add(1)
			metrics.ScanFilesSkipped.WithLabelValues("unreadable").Inc()
			logging.Debug("hashing %s: %v", entry.RelPath, err)
		} else {
			rec.Blake3 = digest.Blake3Hex
			rec.Sha256 = digest.Sha256Hex
			out.hashed = true
			metrics.ScanBytesHashed.Add(float64(entry.Size))
		}
	}

	switch entry.Type {
	case mediatypes.FileTypeImage:
		if opts.PerceptualHashes {
			rep.emit(entry.RelPath, "fingerprinting")
			e.fingerprintImage(entry, rec)
		}
	case mediatypes.FileTypeVideo:
		out.snaps = e.sampleVideo(ctx, entry, opts, rec, rep)
	}

	return out
}

func (e *Engine) fingerprintImage(entry walker.Entry, rec *store.FileRecord) {
	img, err := sampler.StillFrame(entry.Path, MaxSnapshotDim)
	if err != nil {
		metrics.ScanFilesSkipped.WithLabelValues("undecodable").Inc()
		logging.Debug("decoding %s: %v", entry.RelPath, err)
		return
	}
	fp, err := hashing.Perceptual(img)
	if err != nil {
		logging.Debug("fingerprinting %s: %v", entry.RelPath, err)
		return
	}
	rec.AHash, rec.DHash, rec.PHash = &fp.AHash, &fp.DHash, &fp.PHash
}

// sampleVideo probes the file, captures snapshot fingerprints, and
// promotes the middle frame's fingerprints to the file level so videos
// participate in near-duplicate matching.
func (e *Engine) sampleVideo(ctx context.Context, entry walker.Entry, opts Options, rec *store.FileRecord, rep *reporter) []store.SnapshotRecord {
	raw, durationMs, err := sampler.Probe(ctx, entry.Path)
	rec.FFmpegMetadata = raw
	if err != nil {
		metrics.ScanFilesSkipped.WithLabelValues("unprobeable").Inc()
		logging.Debug("probing %s: %v", entry.RelPath, err)
		return nil
	}

	if !opts.CaptureSnapshots || opts.SnapshotsPerVideo <= 0 {
		return nil
	}

	rep.emit(entry.RelPath, "extracting frames")
	frames, err := sampler.FramesForDuration(ctx, entry.Path, durationMs, opts.SnapshotsPerVideo, opts.SnapshotMaxDim)
	if err != nil || len(frames) == 0 {
		metrics.ScanFilesSkipped.WithLabelValues("undecodable").Inc()
		logging.Debug("sampling %s: %v", entry.RelPath, err)
		return nil
	}

	snaps := make([]store.SnapshotRecord, 0, len(frames))
	fingerprints := make([]*hashing.Fingerprints, 0, len(frames))
	for _, frame := range frames {
		metrics.ScanFramesSampled.Inc()
		snap := store.SnapshotRecord{
			SnapshotIndex: frame.Index,
			SnapshotCount: frame.Count,
			AtMs:          frame.AtMs,
			DurationMs:    frame.DurationMs,
		}
		if opts.PerceptualHashes {
			if fp, err := hashing.Perceptual(frame.Image); err == nil {
				snap.AHash, snap.DHash, snap.PHash = &fp.AHash, &fp.DHash, &fp.PHash
				fingerprints = append(fingerprints, &fp)
			} else {
				fingerprints = append(fingerprints, nil)
			}
		}
		snaps = append(snaps, snap)
	}

	if opts.PerceptualHashes {
		if fp := middleFingerprints(fingerprints); fp != nil {
			rec.AHash, rec.DHash, rec.PHash = &fp.AHash, &fp.DHash, &fp.PHash
		}
	}
	return snaps
}

// middleFingerprints picks the fingerprints nearest the middle of the
// sampled frames, falling back outward if that frame failed.
func middleFingerprints(fps []*hashing.Fingerprints) *hashing.Fingerprints {
	if len(fps) == 0 {
		return nil
	}
	mid := len(fps) / 2
	for offset := 0; offset < len(fps); offset++ {
		for _, i := range []int{mid - offset, mid + offset} {
			if i >= 0 && i < len(fps) && fps[i] != nil {
				return fps[i]
			}
		}
	}
	return nil
}

func validateRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: empty root path", ErrInvalidArgument)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: root %s: %v", ErrInvalidArgument, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root %s is not a directory", ErrInvalidArgument, root)
	}
	return nil
}
