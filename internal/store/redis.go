package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/divhit/cobs-bread-research/internal/models"
)

const redisKeyPrefix = "research:task:"

// RedisStore keeps one JSON-encoded record per task key. Redis itself is
// single-threaded per command, but Merge spans a GET and a SET, so the
// read-modify-write pair still runs under a process-wide mutex to keep the
// single-writer-per-key discipline intact across goroutines.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	ctx    context.Context
}

// NewRedisStore creates a RedisStore and verifies connectivity
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, ctx: ctx}, nil
}

// Create adds a new task record
func (s *RedisStore) Create(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := redisKeyPrefix + task.ID
	exists, err := s.client.Exists(s.ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateID
	}
	return s.write(key, task)
}

// Get returns the task for id, or ErrNotFound
func (s *RedisStore) Get(id string) (models.Task, error) {
	data, err := s.client.Get(s.ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("redis get: %w", err)
	}
	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return models.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return task, nil
}

// Merge applies a shallow patch to the task under the process-wide mutex
func (s *RedisStore) Merge(id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.Get(id)
	if err != nil {
		return models.Task{}, err
	}
	if task.Status.Terminal() {
		return models.Task{}, ErrTerminal
	}
	update.Apply(&task)
	if err := s.write(redisKeyPrefix+id, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *RedisStore) write(key string, task models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	// No TTL: task retention is an operational concern, not the store's
	if err := s.client.Set(s.ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
