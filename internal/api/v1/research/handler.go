package research

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/divhit/cobs-bread-research/internal/models"
	"github.com/divhit/cobs-bread-research/internal/services"
	"github.com/divhit/cobs-bread-research/internal/store"
	"github.com/divhit/cobs-bread-research/internal/utils"
)

// Handler serves the research task endpoints.
type Handler struct {
	store        store.Store
	orchestrator *services.Orchestrator
	apiKeySet    bool
}

func NewHandler(s store.Store, o *services.Orchestrator, apiKeySet bool) *Handler {
	return &Handler{store: s, orchestrator: o, apiKeySet: apiKeySet}
}

// StartResearch creates a task and launches the research pipeline in the
// background. It returns immediately with the task ID.
func (h *Handler) StartResearch(c *gin.Context) {
	var req CreateResearchRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Location is required"))
		return
	}

	if !h.apiKeySet {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "GOOGLE_API_KEY is not configured on the server"))
		return
	}

	task := models.Task{
		ID:        uuid.New().String(),
		Location:  location,
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Create(task); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to persist task: "+err.Error()))
		return
	}

	h.orchestrator.Launch(task)

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Research started", CreateResearchResponse{
		TaskID: task.ID,
		Status: task.Status,
	}))
}

// GetResearchStatus returns the current state of a task. Report fields
// are withheld until the task reaches the completed status.
func (h *Handler) GetResearchStatus(c *gin.Context) {
	task, ok := h.lookupTask(c)
	if !ok {
		return
	}

	resp := ResearchStatusResponse{
		TaskID:         task.ID,
		Location:       task.Location,
		Status:         task.Status,
		Stage:          task.Stage,
		CreatedAt:      task.CreatedAt,
		PrefetchErrors: task.PrefetchErrors,
	}
	switch task.Status {
	case models.TaskStatusCompleted:
		resp.ReportLength = task.ReportLength
		resp.DocumentPath = task.DocumentPath
		resp.Summary = task.Summary
	case models.TaskStatusFailed:
		resp.Error = task.ErrorLog
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Task status retrieved", resp))
}

// DownloadDocument streams the rendered report document of a completed
// task as a file attachment.
func (h *Handler) DownloadDocument(c *gin.Context) {
	task, ok := h.lookupTask(c)
	if !ok {
		return
	}

	if task.Status != models.TaskStatusCompleted {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Research is not completed yet, current status: "+string(task.Status)))
		return
	}
	if task.DocumentPath == "" {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Document not found"))
		return
	}
	if _, err := os.Stat(task.DocumentPath); err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Document not found"))
		return
	}

	c.FileAttachment(task.DocumentPath, filepath.Base(task.DocumentPath))
}

func (h *Handler) lookupTask(c *gin.Context) (models.Task, bool) {
	id := c.Param("id")
	task, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Task not found. The task may have expired or the server was restarted."))
		} else {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to load task: "+err.Error()))
		}
		return models.Task{}, false
	}
	return task, true
}
