// Package workers provides background job processors for the storefront service.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/services"
)

// DefaultSyncFlushInterval is the default interval between sync flushes.
const DefaultSyncFlushInterval = 2 * time.Second

// CartSyncWorker drains the outbound cart sync queue on a short interval
// and whenever the queue signals new work, so local cart edits reach the
// customer cart service promptly without a remote call per keystroke.
type CartSyncWorker struct {
	syncService *services.CartSyncService
	interval    time.Duration
	logger      *logrus.Logger

	stopChan chan struct{}
	doneChan chan struct{}

	mu      sync.Mutex
	running bool
	stats   SyncStats
}

// SyncStats tracks cart sync statistics.
type SyncStats struct {
	Pushed      int64     `json:"pushed"`
	Failed      int64     `json:"failed"`
	LastFlushAt time.Time `json:"lastFlushAt,omitempty"`
}

// NewCartSyncWorker creates a new cart sync worker.
func NewCartSyncWorker(syncService *services.CartSyncService, interval time.Duration, logger *logrus.Logger) *CartSyncWorker {
	if interval == 0 {
		interval = DefaultSyncFlushInterval
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &CartSyncWorker{
		syncService: syncService,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start begins the sync flush loop.
func (w *CartSyncWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithField("interval", w.interval.String()).Info("Cart sync worker started")
}

// Stop stops the flush loop after draining any queued lines.
func (w *CartSyncWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Cart sync worker stopped")
}

// IsRunning returns whether the worker is running.
func (w *CartSyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns the current sync statistics.
func (w *CartSyncWorker) Stats() SyncStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// run is the main flush loop.
func (w *CartSyncWorker) run() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			// Final drain so a clean shutdown does not strand queued edits.
			w.flush()
			return
		case <-ticker.C:
			w.flush()
		case <-w.syncService.Wake():
			w.flush()
		}
	}
}

func (w *CartSyncWorker) flush() {
	ctx := context.Background()
	pushed, failed := w.syncService.Flush(ctx)
	if pushed == 0 && failed == 0 {
		return
	}

	w.mu.Lock()
	w.stats.Pushed += int64(pushed)
	w.stats.Failed += int64(failed)
	w.stats.LastFlushAt = time.Now()
	w.mu.Unlock()

	if failed > 0 {
		w.logger.WithFields(logrus.Fields{
			"pushed": pushed,
			"failed": failed,
		}).Warn("Cart sync flush completed with failures")
	}
}
