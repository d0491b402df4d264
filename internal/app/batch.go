package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tracescore/internal/adapters/mq/queue"
	"github.com/okian/tracescore/internal/domain/model"
	"github.com/okian/tracescore/pkg/logger"
	"github.com/okian/tracescore/pkg/metrics"
)

// ScoreBatch fans attempts out across the worker pool and waits until every
// result is in, the batch timeout passes or ctx is done. Attempts without an
// ID get a generated one; repeated IDs reject the whole batch. An attempt that
// fails validation carries its error in its result.
func (s *Service) ScoreBatch(ctx context.Context, attempts []model.Attempt) (model.Batch, error) {
	if err := s.ready(); err != nil {
		return model.Batch{}, err
	}
	s.mu.RLock()
	q := s.attempts
	s.mu.RUnlock()

	switch {
	case len(attempts) == 0:
		return model.Batch{}, s.reject(ctx, "batch", fmt.Errorf("%w: batch is empty", ErrInvalidInput))
	case len(attempts) > s.maxBatchSize:
		return model.Batch{}, s.reject(ctx, "batch",
			fmt.Errorf("%w: batch has %d attempts, limit is %d", ErrTooLarge, len(attempts), s.maxBatchSize))
	}
	metrics.RecordBatch(len(attempts))

	batch := model.Batch{ID: uuid.NewString(), Results: make([]model.Result, len(attempts))}
	now := time.Now()

	index := make(map[string]int, len(attempts))
	queued := make([]model.Attempt, 0, len(attempts))
	for i := range attempts {
		a := attempts[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if _, dup := index[a.ID]; dup {
			return model.Batch{}, s.reject(ctx, "batch", fmt.Errorf("%w: %w %q", ErrInvalidInput, ErrDuplicateID, a.ID))
		}
		index[a.ID] = i
		a.BatchID = batch.ID
		a.SubmittedAt = now

		batch.Results[i] = model.Result{AttemptID: a.ID, BatchID: batch.ID}
		if err := s.validateAttempt(&a); err != nil {
			s.rejected.Add(1)
			batch.Results[i].Err = err
			batch.Results[i].ScoredAt = now
			continue
		}
		queued = append(queued, a)
	}

	results := s.register(batch.ID, len(queued))
	defer s.unregister(batch.ID)

	for i := range queued {
		if err := q.Enqueue(ctx, queued[i]); err != nil {
			return model.Batch{}, s.enqueueError(ctx, batch.ID, err)
		}
	}

	timer := time.NewTimer(s.batchTimeout)
	defer timer.Stop()

	byID := make(map[string]*model.Attempt, len(queued))
	for i := range queued {
		byID[queued[i].ID] = &queued[i]
	}

	for remaining := len(queued); remaining > 0; remaining-- {
		select {
		case r, ok := <-results:
			if !ok {
				return model.Batch{}, ErrServiceStopped
			}
			batch.Results[index[r.AttemptID]] = r
			if r.Err == nil {
				recordScored("batch", byID[r.AttemptID], r.Scores)
				s.scored.Add(1)
			}
		case <-timer.C:
			metrics.RecordBatchTimeout()
			s.logger.Warn(ctx, "batch timed out",
				logger.String("batch_id", batch.ID),
				logger.Int("missing", remaining),
			)
			return model.Batch{}, fmt.Errorf("%w after %s", ErrBatchTimeout, s.batchTimeout)
		case <-ctx.Done():
			return model.Batch{}, ctx.Err()
		}
	}

	s.batches.Add(1)
	s.logger.Debug(ctx, "batch scored",
		logger.String("batch_id", batch.ID),
		logger.Int("attempts", len(attempts)),
		logger.Int("queued", len(queued)),
	)
	return batch, nil
}

// Deliver routes a worker result to the batch waiting for it. Results of
// batches that already returned are dropped.
func (s *Service) Deliver(ctx context.Context, r model.Result) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	ch, ok := s.pending[r.BatchID]
	if !ok {
		s.logger.Debug(ctx, "dropping result of finished batch",
			logger.String("batch_id", r.BatchID),
			logger.String("attempt_id", r.AttemptID),
		)
		return nil
	}
	select {
	case ch <- r:
		return nil
	default:
		return fmt.Errorf("batch %s: result buffer full", r.BatchID)
	}
}

func (s *Service) register(batchID string, n int) <-chan model.Result {
	ch := make(chan model.Result, n)
	s.pendingMu.Lock()
	s.pending[batchID] = ch
	s.pendingMu.Unlock()
	return ch
}

func (s *Service) unregister(batchID string) {
	s.pendingMu.Lock()
	delete(s.pending, batchID)
	s.pendingMu.Unlock()
}

func (s *Service) enqueueError(ctx context.Context, batchID string, err error) error {
	s.rejected.Add(1)
	switch {
	case errors.Is(err, queue.ErrFull):
		s.logger.Warn(ctx, "queue full, rejecting batch", logger.String("batch_id", batchID))
		return ErrBackpressure
	case errors.Is(err, queue.ErrClosed):
		return ErrServiceStopped
	default:
		return err
	}
}
