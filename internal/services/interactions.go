package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/divhit/cobs-bread-research/internal/utils"
)

// Interaction statuses reported by the deep research backend
const (
	InteractionStatusPending    = "pending"
	InteractionStatusInProgress = "in_progress"
	InteractionStatusCompleted  = "completed"
	InteractionStatusFailed     = "failed"
)

// Interaction is the remote job state as reported by the backend
type Interaction struct {
	ID      string              `json:"id"`
	Status  string              `json:"status"`
	Outputs []InteractionOutput `json:"outputs,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// InteractionOutput is one output message of an interaction
type InteractionOutput struct {
	Text string `json:"text"`
}

// OutputText returns the final output text, empty when none was produced
func (i Interaction) OutputText() string {
	if len(i.Outputs) == 0 {
		return ""
	}
	return i.Outputs[len(i.Outputs)-1].Text
}

// InteractionClient is the boundary to the asynchronous research backend:
// submit a prompt for an agent, then poll the returned handle.
type InteractionClient interface {
	Create(ctx context.Context, input, agent string) (string, error)
	Get(ctx context.Context, id string) (Interaction, error)
}

// GeminiInteractionsClient talks to the generativelanguage interactions
// REST surface. BaseURL is configurable so tests can point it at a mock
// server.
type GeminiInteractionsClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewGeminiInteractionsClient creates a client for the given endpoint
func NewGeminiInteractionsClient(baseURL, apiKey string) *GeminiInteractionsClient {
	return &GeminiInteractionsClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  utils.NewHTTPClient(60 * time.Second),
	}
}

type createInteractionRequest struct {
	Input      string `json:"input"`
	Agent      string `json:"agent"`
	Background bool   `json:"background"`
}

// Create submits a background research interaction and returns its handle
func (c *GeminiInteractionsClient) Create(ctx context.Context, input, agent string) (string, error) {
	payload, err := json.Marshal(createInteractionRequest{
		Input:      input,
		Agent:      agent,
		Background: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/interactions", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.APIKey)

	var interaction Interaction
	if err := c.do(req, &interaction); err != nil {
		return "", err
	}
	if interaction.ID == "" {
		return "", fmt.Errorf("backend returned no interaction id")
	}
	return interaction.ID, nil
}

// Get polls the current state of an interaction
func (c *GeminiInteractionsClient) Get(ctx context.Context, id string) (Interaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/interactions/"+id, nil)
	if err != nil {
		return Interaction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.APIKey)

	var interaction Interaction
	if err := c.do(req, &interaction); err != nil {
		return Interaction{}, err
	}
	return interaction, nil
}

func (c *GeminiInteractionsClient) do(req *http.Request, out *Interaction) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api returned error status: %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
