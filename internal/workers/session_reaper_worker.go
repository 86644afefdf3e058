package workers

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/services"
)

const (
	// DefaultReapCheckInterval is the default interval for idle session checks.
	DefaultReapCheckInterval = 10 * time.Minute

	// DefaultSessionMaxIdle is how long a session may idle before removal.
	DefaultSessionMaxIdle = 24 * time.Hour
)

// SessionReaperWorker periodically removes sessions that have idled past
// the TTL so abandoned anonymous carts do not accumulate in memory.
type SessionReaperWorker struct {
	sessions *services.SessionStore
	interval time.Duration
	maxIdle  time.Duration
	logger   *logrus.Logger

	stopChan chan struct{}
	doneChan chan struct{}

	mu      sync.Mutex
	running bool
	stats   ReaperStats
}

// ReaperStats tracks session cleanup statistics.
type ReaperStats struct {
	SessionsReaped int64     `json:"sessionsReaped"`
	LiveSessions   int       `json:"liveSessions"`
	LastRunAt      time.Time `json:"lastRunAt,omitempty"`
}

// NewSessionReaperWorker creates a new session reaper worker.
func NewSessionReaperWorker(sessions *services.SessionStore, interval, maxIdle time.Duration, logger *logrus.Logger) *SessionReaperWorker {
	if interval == 0 {
		interval = DefaultReapCheckInterval
	}
	if maxIdle == 0 {
		maxIdle = DefaultSessionMaxIdle
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &SessionReaperWorker{
		sessions: sessions,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the reap loop.
func (w *SessionReaperWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
	w.logger.WithFields(logrus.Fields{
		"interval": w.interval.String(),
		"maxIdle":  w.maxIdle.String(),
	}).Info("Session reaper worker started")
}

// Stop stops the reap loop.
func (w *SessionReaperWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	<-w.doneChan
	w.logger.Info("Session reaper worker stopped")
}

// IsRunning returns whether the worker is running.
func (w *SessionReaperWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns the current reaper statistics.
func (w *SessionReaperWorker) Stats() ReaperStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// run is the main reap loop.
func (w *SessionReaperWorker) run() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.reap()
		}
	}
}

func (w *SessionReaperWorker) reap() {
	cutoff := time.Now().Add(-w.maxIdle)
	reaped := w.sessions.ReapIdle(cutoff)
	live := w.sessions.Len()

	w.mu.Lock()
	w.stats.SessionsReaped += int64(reaped)
	w.stats.LiveSessions = live
	w.stats.LastRunAt = time.Now()
	w.mu.Unlock()

	if reaped > 0 {
		w.logger.WithFields(logrus.Fields{
			"reaped": reaped,
			"live":   live,
		}).Info("Reaped idle sessions")
	}
}
