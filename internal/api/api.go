package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"media-dedup/internal/cluster"
	"media-dedup/internal/engine"
	"media-dedup/internal/logging"
	"media-dedup/internal/store"
	"media-dedup/internal/walker"
)

// Status is the coarse outcome code reported across the boundary.
// Anything other than StatusOk has a detail message in LastError.
type Status int

const (
	StatusOk Status = iota
	StatusError
	StatusInvalidArgument
	StatusNullHandle
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusNullHandle:
		return "null handle"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Boundary is the handle-table adapter front-ends talk to. Engines and
// cancel tokens are referenced by opaque numeric handles with explicit
// destroy; a destroyed or never-issued handle is caller error and
// reports StatusNullHandle rather than silently succeeding.
type Boundary struct {
	mu      sync.Mutex
	next    uint64
	engines map[uint64]*engineEntry
	tokens  map[uint64]*engine.CancelToken
	lastErr string
}

type engineEntry struct {
	engine *engine.Engine
	store  *store.Store
}

// NewBoundary returns an empty handle table.
func NewBoundary() *Boundary {
	return &Boundary{
		next:    1,
		engines: make(map[uint64]*engineEntry),
		tokens:  make(map[uint64]*engine.CancelToken),
	}
}

// LastError returns the detail message of the most recent fallible call.
// It is overwritten, never appended, on each call; a successful call
// clears it.
func (b *Boundary) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Boundary) clearError() {
	b.mu.Lock()
	b.lastErr = ""
	b.mu.Unlock()
}

func (b *Boundary) fail(status Status, format string, args ...any) Status {
	msg := fmt.Sprintf(format, args...)
	b.mu.Lock()
	b.lastErr = msg
	b.mu.Unlock()
	logging.Debug("boundary: %s: %s", status, msg)
	return status
}

func (b *Boundary) failErr(err error) Status {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		return b.fail(StatusInvalidArgument, "%v", err)
	case errors.Is(err, engine.ErrCancelled):
		return b.fail(StatusCancelled, "%v", err)
	default:
		return b.fail(StatusError, "%v", err)
	}
}

// CreateEngine opens (creating if needed) the catalog at dbPath and
// returns an engine handle. Pair with DestroyEngine.
func (b *Boundary) CreateEngine(ctx context.Context, dbPath string) (uint64, Status) {
	b.clearError()

	if dbPath == "" {
		return 0, b.fail(StatusInvalidArgument, "db path is empty")
	}

	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return 0, b.failErr(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.next
	b.next++
	b.engines[h] = &engineEntry{engine: engine.New(st), store: st}
	return h, StatusOk
}

// DestroyEngine closes the engine's store and invalidates the handle.
// Destroying twice, or destroying a handle that was never issued,
// reports StatusNullHandle.
func (b *Boundary) DestroyEngine(h uint64) Status {
	b.clearError()

	b.mu.Lock()
	entry, ok := b.engines[h]
	if ok {
		delete(b.engines, h)
	}
	b.mu.Unlock()

	if !ok {
		return b.fail(StatusNullHandle, "engine handle %d is not live", h)
	}
	if err := entry.store.Close(); err != nil {
		return b.failErr(err)
	}
	return StatusOk
}

func (b *Boundary) lookupEngine(h uint64) (*engineEntry, Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.engines[h]
	if !ok {
		return nil, StatusNullHandle
	}
	return entry, StatusOk
}

// CreateCancelToken returns a token handle. Pair with DestroyCancelToken.
func (b *Boundary) CreateCancelToken() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.next
	b.next++
	b.tokens[h] = engine.NewCancelToken()
	return h
}

// CancelToken trips the token behind the handle.
func (b *Boundary) CancelToken(h uint64) Status {
	b.clearError()

	b.mu.Lock()
	token, ok := b.tokens[h]
	b.mu.Unlock()
	if !ok {
		return b.fail(StatusNullHandle, "token handle %d is not live", h)
	}
	token.Cancel()
	return StatusOk
}

// DestroyCancelToken invalidates the handle.
func (b *Boundary) DestroyCancelToken(h uint64) Status {
	b.clearError()

	b.mu.Lock()
	_, ok := b.tokens[h]
	if ok {
		delete(b.tokens, h)
	}
	b.mu.Unlock()

	if !ok {
		return b.fail(StatusNullHandle, "token handle %d is not live", h)
	}
	return StatusOk
}

// token resolves an optional token handle; handle 0 means "no token".
func (b *Boundary) token(h uint64) (*engine.CancelToken, bool) {
	if h == 0 {
		return engine.NewCancelToken(), true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	token, ok := b.tokens[h]
	return token, ok
}

// Prescan counts files and bytes under root. Token handle 0 disables
// cancellation.
func (b *Boundary) Prescan(engineH uint64, root string, tokenH uint64, onProgress func(walker.PrescanProgress)) (walker.Totals, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return walker.Totals{}, b.fail(status, "engine handle %d is not live", engineH)
	}
	token, ok := b.token(tokenH)
	if !ok {
		return walker.Totals{}, b.fail(StatusNullHandle, "token handle %d is not live", tokenH)
	}

	totals, err := entry.engine.Prescan(root, token, onProgress)
	if err != nil {
		return totals, b.failErr(err)
	}
	return totals, StatusOk
}

// Scan runs the full pipeline. A cancelled run reports StatusCancelled
// with the partial summary; the catalog holds the completed prefix.
func (b *Boundary) Scan(ctx context.Context, engineH uint64, root string, opts engine.Options, tokenH uint64, totals *walker.Totals, onProgress func(engine.Progress)) (engine.Summary, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return engine.Summary{}, b.fail(status, "engine handle %d is not live", engineH)
	}
	token, ok := b.token(tokenH)
	if !ok {
		return engine.Summary{}, b.fail(StatusNullHandle, "token handle %d is not live", tokenH)
	}

	summary, err := entry.engine.Scan(ctx, root, opts, token, totals, onProgress)
	if err != nil {
		return summary, b.failErr(err)
	}
	return summary, StatusOk
}

// ListFilesetRows returns a page of catalog rows, optionally restricted
// to exact duplicates.
func (b *Boundary) ListFilesetRows(ctx context.Context, engineH uint64, duplicatesOnly bool, limit, offset int) ([]store.FileRecord, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return nil, b.fail(status, "engine handle %d is not live", engineH)
	}

	rows, err := entry.store.ListFiles(ctx, duplicatesOnly, limit, offset)
	if err != nil {
		return nil, b.failErr(err)
	}
	return rows, StatusOk
}

// GroupView locates one group's rows inside a flattened row buffer.
type GroupView struct {
	Label     string `json:"label"`
	RowsStart int    `json:"rowsStart"`
	RowsLen   int    `json:"rowsLen"`
}

// ListExactGroups returns a page of exact-duplicate groups as group
// views over a flattened row buffer.
func (b *Boundary) ListExactGroups(ctx context.Context, engineH uint64, limit, offset int) ([]GroupView, []store.FileRecord, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return nil, nil, b.fail(status, "engine handle %d is not live", engineH)
	}

	files, err := entry.store.ListAllFiles(ctx)
	if err != nil {
		return nil, nil, b.failErr(err)
	}

	var views []GroupView
	var rows []store.FileRecord
	for _, g := range cluster.ExactGroups(files, limit, offset) {
		views = append(views, GroupView{
			Label:     g.Label,
			RowsStart: len(rows),
			RowsLen:   len(g.Files),
		})
		rows = append(rows, g.Files...)
	}
	return views, rows, StatusOk
}

// ListSimilarGroups returns a page of near-duplicate groups under the
// given thresholds, as group views over a flattened annotated row
// buffer.
func (b *Boundary) ListSimilarGroups(ctx context.Context, engineH uint64, limit, offset int, thresholds cluster.Thresholds) ([]GroupView, []cluster.SimilarMember, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return nil, nil, b.fail(status, "engine handle %d is not live", engineH)
	}

	files, err := entry.store.ListAllFiles(ctx)
	if err != nil {
		return nil, nil, b.failErr(err)
	}

	var views []GroupView
	var rows []cluster.SimilarMember
	for _, g := range cluster.SimilarGroups(files, thresholds, limit, offset) {
		views = append(views, GroupView{
			Label:     g.Label,
			RowsStart: len(rows),
			RowsLen:   len(g.Files),
		})
		rows = append(rows, g.Files...)
	}
	return views, rows, StatusOk
}

// GetFilesetMetadata reads the catalog's singleton metadata.
func (b *Boundary) GetFilesetMetadata(ctx context.Context, engineH uint64) (*store.FilesetMetadata, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return nil, b.fail(status, "engine handle %d is not live", engineH)
	}

	meta, err := entry.store.GetFilesetMetadata(ctx)
	if err != nil {
		return nil, b.failErr(err)
	}
	return meta, StatusOk
}

// SetFilesetMetadata overwrites the metadata row wholesale, status
// included.
func (b *Boundary) SetFilesetMetadata(ctx context.Context, engineH uint64, meta *store.FilesetMetadata) Status {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return b.fail(status, "engine handle %d is not live", engineH)
	}
	if meta == nil {
		return b.fail(StatusInvalidArgument, "metadata is nil")
	}

	if err := entry.store.SetFilesetMetadata(ctx, meta); err != nil {
		return b.failErr(err)
	}
	return StatusOk
}

// DeleteFileByPath removes one record. Deleting an uncataloged path
// succeeds with zero rows affected.
func (b *Boundary) DeleteFileByPath(ctx context.Context, engineH uint64, path string) (int64, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return 0, b.fail(status, "engine handle %d is not live", engineH)
	}
	if path == "" {
		return 0, b.fail(StatusInvalidArgument, "path is empty")
	}

	n, err := entry.store.DeleteFileByPath(ctx, path)
	if err != nil {
		return 0, b.failErr(err)
	}
	return n, StatusOk
}

// ListSnapshotsByPath returns a file's snapshot fingerprints. An
// uncataloged path is an empty listing, not an error.
func (b *Boundary) ListSnapshotsByPath(ctx context.Context, engineH uint64, path string) ([]store.SnapshotRecord, Status) {
	b.clearError()

	entry, status := b.lookupEngine(engineH)
	if status != StatusOk {
		return nil, b.fail(status, "engine handle %d is not live", engineH)
	}
	if path == "" {
		return nil, b.fail(StatusInvalidArgument, "path is empty")
	}

	snaps, err := entry.store.ListSnapshotsByPath(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []store.SnapshotRecord{}, StatusOk
		}
		return nil, b.failErr(err)
	}
	return snaps, StatusOk
}
