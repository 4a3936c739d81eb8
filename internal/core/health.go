package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/sqlquery/internal/logger"
)

// pingTimeout bounds a single background ping.
const pingTimeout = 5 * time.Second

// healthMonitor pings the database in the background so a dead pool is
// reported before the next query fails on it.
type healthMonitor struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	lastErr  error
	lastPing time.Time
}

func newHealthMonitor(db *sql.DB, log logger.Logger, interval time.Duration) *healthMonitor {
	return &healthMonitor{
		db:       db,
		logger:   log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (h *healthMonitor) start() {
	h.wg.Add(1)
	go h.run()
}

func (h *healthMonitor) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.check(context.Background())
		case <-h.stop:
			return
		}
	}
}

// check pings once and records the outcome.
func (h *healthMonitor) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("database health check failed", "error", err, "interval", h.interval)
	} else {
		h.logger.Debug("database health check passed", "interval", h.interval)
	}
	return err
}

func (h *healthMonitor) shutdown() {
	close(h.stop)
	h.wg.Wait()
}

func (h *healthMonitor) status() (healthy bool, checked time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == nil, h.lastPing
}
