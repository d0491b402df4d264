// Package service wires the scoring engine, the attempt queue and the worker
// pool into the operations exposed by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tracescore/internal/adapters/mq/queue"
	workerpool "github.com/okian/tracescore/internal/adapters/mq/worker"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/internal/domain/scoring"
	"github.com/okian/tracescore/pkg/logger"
)

const defaultStopTimeout = 10 * time.Second

// scorerAdapter adapts the aggregator to the worker.Scorer contract.
type scorerAdapter struct {
	aggregator *scoring.Aggregator
}

func (a scorerAdapter) Score(ctx context.Context, in scoring.Input) (scoring.Subscores, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Subscores{}, err
	}
	return a.aggregator.Score(in), nil
}

// Service scores strokes synchronously or in batches.
type Service struct {
	mu sync.RWMutex

	aggregator *scoring.Aggregator
	scorer     workerpool.Scorer
	attempts   queue.Queue
	workerPool *workerpool.Pool

	// batchID -> result channel of a batch waiting in ScoreBatch
	pendingMu sync.Mutex
	pending   map[string]chan model.Result

	workerCount      int
	queueSize        int
	maxStrokePoints  int
	maxBatchSize     int
	batchTimeout     time.Duration
	defaultPrecision int
	thresholds       scoring.Thresholds
	tuning           scoring.Tuning

	scored   atomic.Int64
	batches  atomic.Int64
	smoothed atomic.Int64
	analyzed atomic.Int64
	rejected atomic.Int64

	started     bool
	stopped     bool
	stopTimeout time.Duration
	cancel      context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the attempt queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxStrokePoints caps the number of points accepted per stroke.
func WithMaxStrokePoints(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxStrokePoints = n
		}
	}
}

// WithMaxBatchSize caps the number of attempts per batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithBatchTimeout bounds how long ScoreBatch waits for its results.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.batchTimeout = d
		}
	}
}

// WithDefaultPrecision sets the precision used when a smoothing request
// omits one.
func WithDefaultPrecision(p int) Option {
	return func(s *Service) {
		if p >= 0 && p <= 100 {
			s.defaultPrecision = p
		}
	}
}

// WithThresholds replaces the default scoring tiers.
func WithThresholds(t scoring.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithTuning replaces the default difficulty and penalty multipliers.
func WithTuning(t scoring.Tuning) Option {
	return func(s *Service) {
		s.tuning = t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service. Invalid thresholds or tuning fall back to the
// scoring defaults.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        10_000,
		maxStrokePoints:  10_000,
		maxBatchSize:     500,
		batchTimeout:     5 * time.Second,
		defaultPrecision: 50,
		thresholds:       scoring.DefaultThresholds(),
		tuning:           scoring.DefaultTuning(),
		pending:          make(map[string]chan model.Result),
		stopTimeout:      defaultStopTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.aggregator = scoring.NewAggregator(
		scoring.WithThresholds(s.thresholds),
		scoring.WithTuning(s.tuning),
	)
	s.scorer = scorerAdapter{aggregator: s.aggregator}
	return s
}

// Start creates the attempt queue and starts the worker pool. Workers outlive
// ctx cancellation; they run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.attempts = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.attempts, s.scorer, s)
	s.workerPool.Start(runCtx)

	s.started = true
	s.stopped = false
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("max_stroke_points", s.maxStrokePoints),
		logger.Int("max_batch_size", s.maxBatchSize),
		logger.Duration("batch_timeout", s.batchTimeout),
	)
	return nil
}

// Stop drains the queue, stops the workers and fails batches still waiting.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scoring service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	// waiting batches fail before stalled workers are released
	s.pendingMu.Lock()
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	s.pendingMu.Unlock()
	s.cancel()

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "scoring service stopped")
}

// ready returns ErrNotStarted before Start and ErrServiceStopped after Stop.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.started:
		return nil
	case s.stopped:
		return ErrServiceStopped
	default:
		return ErrNotStarted
	}
}

// DefaultPrecision is the smoothing precision used when a caller gives none.
func (s *Service) DefaultPrecision() int {
	return s.defaultPrecision
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"maxStrokePoints": s.maxStrokePoints,
		"maxBatchSize":    s.maxBatchSize,
		"strokesScored":   s.scored.Load(),
		"batchesScored":   s.batches.Load(),
		"smoothRequests":  s.smoothed.Load(),
		"analyzeRequests": s.analyzed.Load(),
		"rejected":        s.rejected.Load(),
	}

	if s.started {
		s.pendingMu.Lock()
		pending := len(s.pending)
		s.pendingMu.Unlock()

		stats["queueLength"] = s.attempts.Len(context.Background())
		stats["workerProcessed"] = s.workerPool.Processed()
		stats["pendingBatches"] = pending
	}

	return stats
}
