package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWriter stores submitted results.
type ResultWriter interface {
	CreateBatch(ctx context.Context, batch []*model.QuizResult) error
	Create(ctx context.Context, r *model.QuizResult) error
}

// Queue is the list the attempt service pushes results onto. Pop returns
// ("", nil) when nothing arrived within timeout.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Push(ctx context.Context, raw []byte) error
}

// ResultWorker moves submitted results from the redis queue into postgres.
type ResultWorker struct {
	queue  Queue
	writer ResultWriter
	log    zerolog.Logger
}

func NewResultWorker(queue Queue, writer ResultWriter, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		queue:  queue,
		writer: writer,
		log:    log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*model.QuizResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			raw, err := w.queue.Pop(ctx, ResultPollTimeout)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop error")
				}
				continue
			}
			if raw == "" {
				continue
			}

			var r model.QuizResult
			if err := json.Unmarshal([]byte(raw), &r); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &r)
		}
	}
}

// ----------------------------------------------------------------
// Bulk insert with single-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*model.QuizResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.writer.CreateBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("Bulk result insert failed, using fallback")

		for _, r := range batch {
			if err := w.writer.Create(ctx, r); err != nil {
				w.log.Error().Err(err).
					Str("quiz_id", r.QuizID).
					Int("user_id", r.UserID).
					Msg("Single result insert failed, requeueing")
				raw, _ := json.Marshal(r)
				if err := w.queue.Push(ctx, raw); err != nil {
					w.log.Error().Err(err).Msg("Requeue failed, result dropped")
				}
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Results persisted")
}

// RedisQueue reads config.WorkerKey.PersistQuizResultsQueue.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: config.WorkerKey.PersistQuizResultsQueue}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	if len(item) < 2 {
		return "", nil
	}
	return item[1], nil
}

func (q *RedisQueue) Push(ctx context.Context, raw []byte) error {
	return q.rdb.RPush(ctx, q.key, raw).Err()
}
