package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/divhit/cobs-bread-research/internal/models"
	"github.com/divhit/cobs-bread-research/internal/store"
)

// Pipeline stage labels, advisory only
const (
	StagePrefetch    = "prefetch"
	StageSubmitting  = "submitting"
	StageAwaitingJob = "awaiting-job"
	StageRendering   = "rendering"
)

// RenderFunc produces the report artifact and returns its path
type RenderFunc func(location, report, outputDir string) (string, error)

// OrchestratorConfig carries the tunables of the research pipeline
type OrchestratorConfig struct {
	AgentID      string
	PollInterval time.Duration
	MaxPollTime  time.Duration
	OutputsDir   string
	// Render overrides the artifact renderer; nil means RenderDocument
	Render RenderFunc
}

// Orchestrator drives research tasks from pending to a terminal status.
// Each task runs on its own goroutine, detached from the request that
// created it; all progress is written through the task store so status
// reads never coordinate with the pipeline directly.
type Orchestrator struct {
	store       store.Store
	client      InteractionClient
	prefetchers []Prefetcher
	cfg         OrchestratorConfig
	render      RenderFunc
	wg          sync.WaitGroup
}

// NewOrchestrator wires the pipeline dependencies
func NewOrchestrator(s store.Store, client InteractionClient, prefetchers []Prefetcher, cfg OrchestratorConfig) *Orchestrator {
	render := cfg.Render
	if render == nil {
		render = RenderDocument
	}
	return &Orchestrator{
		store:       s,
		client:      client,
		prefetchers: prefetchers,
		cfg:         cfg,
		render:      render,
	}
}

// Launch starts the pipeline for a freshly created task and returns
// immediately. The caller never blocks on the research itself.
func (o *Orchestrator) Launch(task models.Task) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(task)
	}()
}

// Wait blocks until every in-flight task has reached a terminal status,
// or until ctx is done, whichever comes first.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the outermost task boundary: whatever happens inside the
// pipeline, the task record ends up terminal.
func (o *Orchestrator) run(task models.Task) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("research pipeline panicked",
				zap.String("task_id", task.ID), zap.Any("panic", r))
			o.fail(task.ID, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	if err := o.pipeline(task); err != nil {
		zap.L().Warn("research task failed",
			zap.String("task_id", task.ID), zap.Error(err))
		o.fail(task.ID, err.Error())
	}
}

func (o *Orchestrator) pipeline(task models.Task) error {
	ctx := context.Background()

	if err := o.advance(task.ID, StagePrefetch); err != nil {
		return err
	}

	sections := o.prefetch(ctx, task.ID, task.Location)

	if err := o.setStage(task.ID, StageSubmitting); err != nil {
		return err
	}

	prompt := BuildResearchPrompt(task.Location, time.Now(), sections)
	interactionID, err := o.client.Create(ctx, prompt, o.cfg.AgentID)
	if err != nil {
		return fmt.Errorf("failed to start research: %w", err)
	}

	if _, err := o.store.Merge(task.ID, models.TaskUpdate{
		InteractionID: &interactionID,
		Stage:         models.StringPtr(StageAwaitingJob),
	}); err != nil {
		return err
	}
	zap.L().Info("research interaction created",
		zap.String("task_id", task.ID), zap.String("interaction_id", interactionID))

	report, err := o.poll(ctx, interactionID)
	if err != nil {
		return err
	}

	if err := o.setStage(task.ID, StageRendering); err != nil {
		return err
	}

	// Extraction is best-effort by contract: a nil summary is fine and
	// never fails the task
	summary := ExtractReportSummary(report)

	docPath, err := o.render(task.Location, report, o.cfg.OutputsDir)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	_, err = o.store.Merge(task.ID, models.TaskUpdate{
		Status:       models.StatusPtr(models.TaskStatusCompleted),
		Stage:        models.StringPtr(""),
		Report:       &report,
		ReportLength: models.IntPtr(len(report)),
		DocumentPath: &docPath,
		Summary:      summary,
	})
	if err != nil {
		return err
	}
	zap.L().Info("research task completed",
		zap.String("task_id", task.ID),
		zap.Int("report_length", len(report)),
		zap.String("document_path", docPath))
	return nil
}

// prefetch runs the auxiliary lookups. Failures become informational
// notes on the task record; the pipeline proceeds regardless.
func (o *Orchestrator) prefetch(ctx context.Context, taskID, location string) []PrefetchSection {
	var sections []PrefetchSection
	var notes []string

	for _, p := range o.prefetchers {
		section, err := p.Fetch(ctx, location)
		if err != nil {
			zap.L().Warn("prefetch failed, continuing without it",
				zap.String("task_id", taskID),
				zap.String("source", p.Name()), zap.Error(err))
			notes = append(notes, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		sections = append(sections, section)
	}

	if len(notes) > 0 {
		if _, err := o.store.Merge(taskID, models.TaskUpdate{PrefetchErrors: notes}); err != nil {
			zap.L().Error("failed to record prefetch notes",
				zap.String("task_id", taskID), zap.Error(err))
		}
	}
	return sections
}

// poll checks the interaction at a fixed interval until it reaches a
// terminal status or the wall-clock budget runs out. A job that outlives
// the budget keeps running remotely; it is not cancelled.
func (o *Orchestrator) poll(ctx context.Context, interactionID string) (string, error) {
	deadline := time.Now().Add(o.cfg.MaxPollTime)

	for {
		if time.Now().After(deadline) {
			return "", errors.New("research exceeded maximum time limit")
		}

		interaction, err := o.client.Get(ctx, interactionID)
		if err != nil {
			return "", fmt.Errorf("failed to poll research status: %w", err)
		}

		switch interaction.Status {
		case InteractionStatusCompleted:
			report := interaction.OutputText()
			if strings.TrimSpace(report) == "" {
				return "", errors.New("research completed but no output received")
			}
			return report, nil
		case InteractionStatusFailed:
			reason := interaction.Error
			if reason == "" {
				reason = "unknown error"
			}
			return "", fmt.Errorf("research failed: %s", reason)
		}

		time.Sleep(o.cfg.PollInterval)
	}
}

func (o *Orchestrator) advance(taskID, stage string) error {
	_, err := o.store.Merge(taskID, models.TaskUpdate{
		Status: models.StatusPtr(models.TaskStatusRunning),
		Stage:  &stage,
	})
	return err
}

func (o *Orchestrator) setStage(taskID, stage string) error {
	_, err := o.store.Merge(taskID, models.TaskUpdate{Stage: &stage})
	return err
}

func (o *Orchestrator) fail(taskID, reason string) {
	if _, err := o.store.Merge(taskID, models.TaskUpdate{
		Status:   models.StatusPtr(models.TaskStatusFailed),
		Stage:    models.StringPtr(""),
		ErrorLog: &reason,
	}); err != nil {
		zap.L().Error("failed to record terminal failure",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
