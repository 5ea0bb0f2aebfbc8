package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/divhit/cobs-bread-research/internal/models"
	"github.com/divhit/cobs-bread-research/internal/store"
)

// fakeInteractionClient scripts the backend: one Create result plus a
// sequence of Get results consumed in order (the last one repeats).
type fakeInteractionClient struct {
	mu        sync.Mutex
	createID  string
	createErr error
	polls     []Interaction
	pollErr   error
	pollCalls int
}

func (f *fakeInteractionClient) Create(ctx context.Context, input, agent string) (string, error) {
	return f.createID, f.createErr
}

func (f *fakeInteractionClient) Get(ctx context.Context, id string) (Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return Interaction{}, f.pollErr
	}
	idx := f.pollCalls
	if idx >= len(f.polls) {
		idx = len(f.polls) - 1
	}
	f.pollCalls++
	return f.polls[idx], nil
}

type fakePrefetcher struct {
	name    string
	section PrefetchSection
	err     error
}

func (f fakePrefetcher) Name() string { return f.name }
func (f fakePrefetcher) Fetch(ctx context.Context, location string) (PrefetchSection, error) {
	return f.section, f.err
}

func fakeRender(location, report, outputDir string) (string, error) {
	return filepath.Join(outputDir, "report.pdf"), nil
}

func testConfig() OrchestratorConfig {
	return OrchestratorConfig{
		AgentID:      "deep-research-pro-preview-12-2025",
		PollInterval: 5 * time.Millisecond,
		MaxPollTime:  time.Second,
		OutputsDir:   "outputs",
		Render:       fakeRender,
	}
}

func newPendingTask(s store.Store, id string) models.Task {
	task := models.Task{
		ID:        id,
		Location:  "Test St.",
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Create(task); err != nil {
		panic(err)
	}
	return task
}

func waitTerminal(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, o.Wait(ctx))
}

func TestOrchestratorCompletesTask(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls: []Interaction{
			{Status: InteractionStatusPending},
			{Status: InteractionStatusInProgress},
			{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: "Report body"}}},
		},
	}
	o := NewOrchestrator(s, client, nil, testConfig())

	task := newPendingTask(s, "task-1")
	o.Launch(task)
	waitTerminal(t, o)

	got, err := s.Get("task-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, "Report body", got.Report)
	assert.Equal(t, 11, got.ReportLength)
	assert.Equal(t, "interaction-1", got.InteractionID)
	assert.NotEmpty(t, got.DocumentPath)
	assert.Empty(t, got.ErrorLog)
	assert.Empty(t, got.Stage)
}

func TestOrchestratorEmptyOutputFails(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls:    []Interaction{{Status: InteractionStatusCompleted}},
	}
	o := NewOrchestrator(s, client, nil, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "no output")
	assert.Empty(t, got.Report)
	assert.Empty(t, got.DocumentPath)
}

func TestOrchestratorJobFailureSurfacesReason(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls:    []Interaction{{Status: InteractionStatusFailed, Error: "quota exhausted"}},
	}
	o := NewOrchestrator(s, client, nil, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "quota exhausted")
}

func TestOrchestratorPollBudgetExceeded(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls:    []Interaction{{Status: InteractionStatusInProgress}},
	}
	cfg := testConfig()
	cfg.MaxPollTime = 25 * time.Millisecond
	o := NewOrchestrator(s, client, nil, cfg)

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "maximum time limit")
}

func TestOrchestratorSubmitFailureIsTerminal(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{createErr: errors.New("missing credentials")}
	o := NewOrchestrator(s, client, nil, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "failed to start research")
	assert.Contains(t, got.ErrorLog, "missing credentials")
}

func TestOrchestratorPollErrorIsTerminal(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		pollErr:  errors.New("connection refused"),
	}
	o := NewOrchestrator(s, client, nil, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "failed to poll research status")
}

func TestOrchestratorPrefetchFailureIsNotTerminal(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls: []Interaction{
			{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: "Report body"}}},
		},
	}
	prefetchers := []Prefetcher{
		fakePrefetcher{name: "places", err: errors.New("no place found")},
		fakePrefetcher{name: "search-grounding", section: PrefetchSection{Title: "Insights", Content: "good bread"}},
	}
	o := NewOrchestrator(s, client, prefetchers, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	if assert.Len(t, got.PrefetchErrors, 1) {
		assert.Contains(t, got.PrefetchErrors[0], "places")
		assert.Contains(t, got.PrefetchErrors[0], "no place found")
	}
}

func TestOrchestratorRenderFailureIsTerminal(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls: []Interaction{
			{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: "Report body"}}},
		},
	}
	cfg := testConfig()
	cfg.Render = func(location, report, outputDir string) (string, error) {
		return "", errors.New("disk full")
	}
	o := NewOrchestrator(s, client, nil, cfg)

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "failed to render document")
}

func TestOrchestratorPanicBecomesTerminalFailure(t *testing.T) {
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls: []Interaction{
			{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: "Report body"}}},
		},
	}
	cfg := testConfig()
	cfg.Render = func(location, report, outputDir string) (string, error) {
		panic("renderer exploded")
	}
	o := NewOrchestrator(s, client, nil, cfg)

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorLog, "renderer exploded")
}

func TestOrchestratorSummaryExtracted(t *testing.T) {
	report := "## Findings\n\n- **Total number of reviews analyzed**: 1,204\n" +
		"- **Date range of reviews**: March 2019 to January 2026\n"
	s := store.NewMemStore()
	client := &fakeInteractionClient{
		createID: "interaction-1",
		polls: []Interaction{
			{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: report}}},
		},
	}
	o := NewOrchestrator(s, client, nil, testConfig())

	o.Launch(newPendingTask(s, "task-1"))
	waitTerminal(t, o)

	got, _ := s.Get("task-1")
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	if assert.NotNil(t, got.Summary) {
		assert.Equal(t, 1204, got.Summary.TotalReviews)
		assert.Equal(t, "March 2019 to January 2026", got.Summary.DateRange)
	}
}

// N concurrent pipelines over one store: every record's terminal state
// must match its own pipeline's outcome, with no cross-task bleed.
func TestOrchestratorConcurrentTasksNoCrossBleed(t *testing.T) {
	const n = 16
	s := store.NewMemStore()
	orchestrators := make([]*Orchestrator, 0, n)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("task-%d", i)
		client := &fakeInteractionClient{createID: "interaction-" + id}
		if i%2 == 0 {
			client.polls = []Interaction{
				{Status: InteractionStatusInProgress},
				{Status: InteractionStatusCompleted, Outputs: []InteractionOutput{{Text: "report for " + id}}},
			}
		} else {
			client.polls = []Interaction{
				{Status: InteractionStatusFailed, Error: "failure for " + id},
			}
		}
		o := NewOrchestrator(s, client, nil, testConfig())
		o.Launch(newPendingTask(s, id))
		orchestrators = append(orchestrators, o)
	}

	for _, o := range orchestrators {
		waitTerminal(t, o)
	}

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("task-%d", i)
		got, err := s.Get(id)
		assert.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, models.TaskStatusCompleted, got.Status, id)
			assert.Equal(t, "report for "+id, got.Report, id)
			assert.Empty(t, got.ErrorLog, id)
		} else {
			assert.Equal(t, models.TaskStatusFailed, got.Status, id)
			assert.Contains(t, got.ErrorLog, "failure for "+id, id)
			assert.Empty(t, got.Report, id)
		}
		assert.Equal(t, "interaction-"+id, got.InteractionID, id)
	}
}
