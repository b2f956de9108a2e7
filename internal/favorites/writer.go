package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/lukman83/skinscout/internal/models"
	"go.uber.org/zap"
)

// Persister stores favorite rows, replacing existing rows with the same id.
type Persister interface {
	UpsertAll(ctx context.Context, records []models.FavoriteRecord) error
}

const defaultWriteTimeout = 10 * time.Second

// Writer is a single-writer queue in front of a Persister. Pending writes are
// coalesced per id so that the last enqueued state for an id is the one that
// gets committed, whatever order earlier writes finish in.
type Writer struct {
	persister Persister
	logger    *zap.Logger
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]models.FavoriteRecord
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
	idle *sync.Cond
	busy bool
}

// NewWriter starts the writer goroutine. Call Close to flush and stop it.
func NewWriter(persister Persister, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{
		persister: persister,
		logger:    logger,
		timeout:   defaultWriteTimeout,
		pending:   make(map[string]models.FavoriteRecord),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	w.idle = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Enqueue schedules rec for persistence without blocking. Writes enqueued
// after Close are dropped.
func (w *Writer) Enqueue(rec models.FavoriteRecord) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("favorite write dropped, writer closed", zap.String("product_id", rec.ID))
		return
	}
	if _, ok := w.pending[rec.ID]; !ok {
		w.order = append(w.order, rec.ID)
	}
	w.pending[rec.ID] = rec
	select {
	case w.wake <- struct{}{}:
	default:
	}
	w.mu.Unlock()
}

// Flush blocks until every write enqueued before the call has been attempted.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.order) > 0 || w.busy {
		w.idle.Wait()
	}
}

// Close flushes pending writes and stops the writer goroutine, giving up when
// ctx is done.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.wake)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for range w.wake {
		w.drain()
	}
	w.drain()
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.busy = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		batch := make([]models.FavoriteRecord, 0, len(w.order))
		for _, id := range w.order {
			batch = append(batch, w.pending[id])
		}
		w.pending = make(map[string]models.FavoriteRecord)
		w.order = nil
		w.busy = true
		w.mu.Unlock()

		w.write(batch)
	}
}

func (w *Writer) write(batch []models.FavoriteRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.persister.UpsertAll(ctx, batch); err != nil {
		w.logger.Error("failed to persist favorites",
			zap.Int("records", len(batch)),
			zap.Error(err))
		return
	}
	w.logger.Debug("favorites persisted", zap.Int("records", len(batch)))
}
