package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// FileStore persists all tasks as a single JSON object keyed by task ID.
// Every mutation loads the whole collection, applies the change and writes
// the collection back, all inside one process-wide mutex. That keeps two
// tasks updating concurrently from clobbering each other's records even
// though each task only ever touches its own key.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore backed by the given file. The parent
// directory is created if missing; the file itself appears on first write.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Create adds a new task record and flushes the collection to disk
func (s *FileStore) Create(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := tasks[task.ID]; exists {
		return ErrDuplicateID
	}
	tasks[task.ID] = task
	return s.save(tasks)
}

// Get returns the task for id, or ErrNotFound
func (s *FileStore) Get(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return models.Task{}, err
	}
	task, ok := tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	return task, nil
}

// Merge applies a shallow patch to the task and flushes before returning
func (s *FileStore) Merge(id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return models.Task{}, err
	}
	task, ok := tasks[id]
	if !ok {
		return models.Task{}, ErrNotFound
	}
	if task.Status.Terminal() {
		return models.Task{}, ErrTerminal
	}
	update.Apply(&task)
	tasks[id] = task
	if err := s.save(tasks); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *FileStore) load() (map[string]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.Task{}, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	tasks := map[string]models.Task{}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode task file: %w", err)
	}
	return tasks, nil
}

func (s *FileStore) save(tasks map[string]models.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}
