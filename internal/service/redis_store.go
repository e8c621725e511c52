package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// RedisQuizCache caches full active quizzes under config.CacheKey.QuizPayloadKey.
type RedisQuizCache struct {
	rdb *redis.Client
}

// NewRedisQuizCache creates a new RedisQuizCache.
func NewRedisQuizCache(rdb *redis.Client) *RedisQuizCache {
	return &RedisQuizCache{rdb: rdb}
}

func (c *RedisQuizCache) Get(ctx context.Context, id string) (*model.Quiz, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.QuizPayloadKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached quiz: %w", err)
	}

	var q model.Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode cached quiz: %w", err)
	}
	return &q, nil
}

func (c *RedisQuizCache) Set(ctx context.Context, q *model.Quiz) error {
	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.QuizPayloadKey(q.ID), raw, 0).Err()
}

func (c *RedisQuizCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(id)).Err()
}

// RedisAttemptStore keeps attempt state as JSON with a sliding TTL.
type RedisAttemptStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisAttemptStore creates a new RedisAttemptStore.
func NewRedisAttemptStore(rdb *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{rdb: rdb, ttl: ttl}
}

func (s *RedisAttemptStore) Load(ctx context.Context, quizID string, userID int) (*model.AttemptState, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.StudentAttemptKey(quizID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var st model.AttemptState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode attempt: %w", err)
	}
	return &st, nil
}

func (s *RedisAttemptStore) Save(ctx context.Context, st *model.AttemptState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	return s.rdb.Set(ctx, config.CacheKey.StudentAttemptKey(st.QuizID, st.UserID), raw, s.ttl).Err()
}

// RedisResultQueue pushes submitted results onto the worker queue.
type RedisResultQueue struct {
	rdb *redis.Client
}

// NewRedisResultQueue creates a new RedisResultQueue.
func NewRedisResultQueue(rdb *redis.Client) *RedisResultQueue {
	return &RedisResultQueue{rdb: rdb}
}

func (q *RedisResultQueue) Enqueue(ctx context.Context, r *model.QuizResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistQuizResultsQueue, raw).Err()
}
