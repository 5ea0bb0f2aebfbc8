package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/divhit/cobs-bread-research/internal/models"
)

// TaskRow is the gorm row shape for a task record. Optional list and
// struct fields are stored as JSON columns so the row stays a flat
// mirror of models.Task.
type TaskRow struct {
	ID             string         `gorm:"primarykey"`
	Location       string         `gorm:"not null"`
	Status         string         `gorm:"index"`
	Stage          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	InteractionID  string
	PrefetchErrors datatypes.JSON
	Report         string
	ReportLength   int
	DocumentPath   string
	Summary        datatypes.JSON
	ErrorLog       string
}

// TableName overrides the table name
func (TaskRow) TableName() string {
	return "research_tasks"
}

// GormStore persists task records in a relational database. The sqlite
// file commits synchronously on each write, so a crash between pipeline
// stages loses only the in-flight stage. Merge still takes a process-wide
// mutex: sqlite serializes writers per connection, but the load-patch-save
// pair must not interleave across goroutines.
type GormStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// NewGormStore migrates the schema and returns a store
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&TaskRow{}); err != nil {
		return nil, fmt.Errorf("migrate research_tasks: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Create adds a new task record
func (s *GormStore) Create(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := toRow(task)
	if err != nil {
		return err
	}
	var count int64
	if err := s.db.Model(&TaskRow{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateID
	}
	return s.db.Create(&row).Error
}

// Get returns the task for id, or ErrNotFound
func (s *GormStore) Get(id string) (models.Task, error) {
	var row TaskRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	return fromRow(row)
}

// Merge applies a shallow patch to the task under the process-wide mutex
func (s *GormStore) Merge(id string, update models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row TaskRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}
	task, err := fromRow(row)
	if err != nil {
		return models.Task{}, err
	}
	if task.Status.Terminal() {
		return models.Task{}, ErrTerminal
	}
	update.Apply(&task)
	updated, err := toRow(task)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.db.Save(&updated).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func toRow(task models.Task) (TaskRow, error) {
	row := TaskRow{
		ID:            task.ID,
		Location:      task.Location,
		Status:        string(task.Status),
		Stage:         task.Stage,
		CreatedAt:     task.CreatedAt,
		InteractionID: task.InteractionID,
		Report:        task.Report,
		ReportLength:  task.ReportLength,
		DocumentPath:  task.DocumentPath,
		ErrorLog:      task.ErrorLog,
	}
	if task.PrefetchErrors != nil {
		data, err := json.Marshal(task.PrefetchErrors)
		if err != nil {
			return TaskRow{}, err
		}
		row.PrefetchErrors = datatypes.JSON(data)
	}
	if task.Summary != nil {
		data, err := json.Marshal(task.Summary)
		if err != nil {
			return TaskRow{}, err
		}
		row.Summary = datatypes.JSON(data)
	}
	return row, nil
}

func fromRow(row TaskRow) (models.Task, error) {
	task := models.Task{
		ID:            row.ID,
		Location:      row.Location,
		Status:        models.TaskStatus(row.Status),
		Stage:         row.Stage,
		CreatedAt:     row.CreatedAt,
		InteractionID: row.InteractionID,
		Report:        row.Report,
		ReportLength:  row.ReportLength,
		DocumentPath:  row.DocumentPath,
		ErrorLog:      row.ErrorLog,
	}
	if len(row.PrefetchErrors) > 0 {
		if err := json.Unmarshal(row.PrefetchErrors, &task.PrefetchErrors); err != nil {
			return models.Task{}, err
		}
	}
	if len(row.Summary) > 0 {
		task.Summary = &models.ReportSummary{}
		if err := json.Unmarshal(row.Summary, task.Summary); err != nil {
			return models.Task{}, err
		}
	}
	return task, nil
}
