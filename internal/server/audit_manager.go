package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/metrics"
)

type AuditConfig struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultAuditConfig is what the HTTP server uses unless told otherwise.
var DefaultAuditConfig = AuditConfig{Workers: 2, BatchSize: 5, FlushInterval: 500 * time.Millisecond}

// AuditManager collects audit entries into batches and writes them to the
// logger from a small worker pool. A batch that finds every worker busy is
// written inline. Entries that arrive after shutdown are written directly.
type AuditManager struct {
	logger *zap.Logger
	cfg    AuditConfig

	entries  chan AuditLogEntry
	batches  chan []AuditLogEntry
	stopping chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	pending atomic.Int64
}

func NewAuditManager(cfg AuditConfig, logger *zap.Logger) *AuditManager {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultAuditConfig.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultAuditConfig.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultAuditConfig.FlushInterval
	}
	return &AuditManager{
		logger:   logger.Named("audit"),
		cfg:      cfg,
		entries:  make(chan AuditLogEntry, cfg.Workers*cfg.BatchSize*2),
		batches:  make(chan []AuditLogEntry, cfg.Workers*2),
		stopping: make(chan struct{}),
	}
}

// Start launches the aggregator and the workers. They stop when ctx is done
// or Shutdown is called, whichever happens first.
func (m *AuditManager) Start(ctx context.Context) {
	m.logger.Info("Starting audit manager", zap.Int("workers", m.cfg.Workers), zap.Int("batch_size", m.cfg.BatchSize))

	m.wg.Add(1 + m.cfg.Workers)
	go m.aggregate(ctx)
	for i := 0; i < m.cfg.Workers; i++ {
		go m.work(ctx, i)
	}

	go func() {
		select {
		case <-ctx.Done():
			m.Shutdown(context.Background())
		case <-m.stopping:
		}
	}()
}

// Shutdown waits for queued entries to be written or for ctx to expire.
func (m *AuditManager) Shutdown(ctx context.Context) {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping audit manager", zap.Int64("pending", m.Pending()))
		close(m.stopping)

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			m.logger.Info("Audit manager stopped")
		case <-ctx.Done():
			m.logger.Warn("Audit manager stop interrupted", zap.Int64("pending", m.Pending()))
		}
	})
}

// Pending is the number of accepted entries not yet written.
func (m *AuditManager) Pending() int64 {
	return m.pending.Load()
}

func (m *AuditManager) LogEntry(ctx context.Context, entry AuditLogEntry) {
	m.pending.Add(1)

	select {
	case <-m.stopping:
		m.writeDirect(entry)
		return
	default:
	}

	select {
	case m.entries <- entry:
	case <-m.stopping:
		m.writeDirect(entry)
	case <-ctx.Done():
		m.writeDirect(entry)
	}
}

func (m *AuditManager) aggregate(ctx context.Context) {
	defer m.wg.Done()

	var (
		batch []AuditLogEntry
		timer *time.Timer
		flush <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if len(batch) > 0 {
			m.dispatch(batch)
		}
		close(m.batches)
	}()

	for {
		select {
		case entry := <-m.entries:
			batch = append(batch, entry)
			switch {
			case len(batch) >= m.cfg.BatchSize:
				m.dispatch(batch)
				batch = nil
				flush = nil
			case len(batch) == 1:
				timer = time.NewTimer(m.cfg.FlushInterval)
				flush = timer.C
			}

		case <-flush:
			m.dispatch(batch)
			batch = nil
			flush = nil

		case <-ctx.Done():
			batch = m.drain(batch)
			return

		case <-m.stopping:
			batch = m.drain(batch)
			return
		}
	}
}

func (m *AuditManager) drain(batch []AuditLogEntry) []AuditLogEntry {
	for {
		select {
		case entry := <-m.entries:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
}

func (m *AuditManager) dispatch(batch []AuditLogEntry) {
	out := make([]AuditLogEntry, len(batch))
	copy(out, batch)

	select {
	case m.batches <- out:
	default:
		m.write(-1, out, "inline")
	}
}

func (m *AuditManager) work(ctx context.Context, id int) {
	defer m.wg.Done()

	for {
		select {
		case batch, ok := <-m.batches:
			if !ok {
				return
			}
			m.write(id, batch, "batched")
		case <-ctx.Done():
			for batch := range m.batches {
				m.write(id, batch, "batched")
			}
			return
		}
	}
}

func (m *AuditManager) writeDirect(entry AuditLogEntry) {
	m.logger.Warn("Audit entry written directly", entry.fields()...)
	metrics.AuditEntriesTotal.WithLabelValues("direct").Inc()
	m.pending.Add(-1)
}

func (m *AuditManager) write(workerID int, batch []AuditLogEntry, path string) {
	for _, entry := range batch {
		fields := append(entry.fields(), zap.Int("worker", workerID))
		if entry.Failed() {
			m.logger.Warn("Audit", fields...)
		} else {
			m.logger.Info("Audit", fields...)
		}
	}
	metrics.AuditEntriesTotal.WithLabelValues(path).Add(float64(len(batch)))
	m.pending.Add(-int64(len(batch)))
}
