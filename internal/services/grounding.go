package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GroundingPrefetcher asks a search-grounded Gemini model for a quick
// cross-platform review sweep (Yelp, TripAdvisor, Reddit, delivery apps)
// before the deep research agent starts.
type GroundingPrefetcher struct {
	APIKey string
	Model  string
}

// NewGroundingPrefetcher creates a prefetcher using the given model
func NewGroundingPrefetcher(apiKey, model string) *GroundingPrefetcher {
	return &GroundingPrefetcher{APIKey: apiKey, Model: model}
}

// Name implements Prefetcher
func (g *GroundingPrefetcher) Name() string { return "search-grounding" }

// Fetch runs one grounded generation and returns its text as a section
func (g *GroundingPrefetcher) Fetch(ctx context.Context, location string) (PrefetchSection, error) {
	if g.APIKey == "" {
		return PrefetchSection{}, errors.New("GOOGLE_API_KEY not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return PrefetchSection{}, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	prompt := fmt.Sprintf(
		"Search the web for reviews of COBS Bread bakery in %s. "+
			"Find ratings and customer feedback from Yelp, TripAdvisor, Facebook, "+
			"UberEats, DoorDash, Reddit and local food blogs. Summarize what customers "+
			"love and complain about, list specific products mentioned, and cite which "+
			"platform each insight comes from.", location)

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), config)
	if err != nil {
		return PrefetchSection{}, fmt.Errorf("grounded search failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return PrefetchSection{}, errors.New("grounded search returned no text")
	}

	return PrefetchSection{Title: "Search-Grounded Review Insights", Content: text}, nil
}
