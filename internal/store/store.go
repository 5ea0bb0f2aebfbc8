package store

import (
	"errors"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// ErrNotFound is returned when no task exists for the given ID
var ErrNotFound = errors.New("task not found")

// ErrDuplicateID is returned when Create is called with an ID already in use
var ErrDuplicateID = errors.New("task id already exists")

// ErrTerminal is returned by Merge when the task already reached a
// terminal status; terminal records are immutable.
var ErrTerminal = errors.New("task is terminal")

// Store is the durable mapping from task ID to task record.
//
// Merge is the sole mutation primitive: it applies a shallow field-level
// patch so callers never read-modify-write whole records themselves.
// Implementations must flush each Create/Merge to their backing storage
// before returning, and must serialize the load-mutate-persist cycle so
// concurrent merges on different tasks never lose each other's writes.
type Store interface {
	Create(task models.Task) error
	Get(id string) (models.Task, error)
	Merge(id string, update models.TaskUpdate) (models.Task, error)
}
