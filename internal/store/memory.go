package store

import (
	"sync"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// MemStore keeps tasks in a process-local map. Used by tests and as an
// ephemeral backend; records do not survive a restart.
type MemStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{tasks: map[string]models.Task{}}
}

// Create adds a new task record
func (s *MemStore) Create(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return ErrDuplicateID
	}
	s.tasks[task.ID] = task
	return nil
}

// Get returns the task for id, or ErrNotFound
func (s *MemStore) Get(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

// Merge applies a shallow patch to the task
func (s *MemStore) Merge(id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	if task.Status.Terminal() {
		return models.Task{}, ErrTerminal
	}
	update.Apply(&task)
	s.tasks[id] = task
	return task, nil
}
