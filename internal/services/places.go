package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/divhit/cobs-bread-research/internal/utils"
)

// Prefetcher gathers auxiliary context for one location before the
// research job is submitted. Failures are best-effort by contract: the
// orchestrator records them and proceeds without the data.
type Prefetcher interface {
	Name() string
	Fetch(ctx context.Context, location string) (PrefetchSection, error)
}

// PlacesPrefetcher pulls the newest Google reviews for the bakery: a text
// search resolves the place ID, then the legacy details endpoint returns
// full review text sorted newest-first.
type PlacesPrefetcher struct {
	APIKey     string
	SearchURL  string
	DetailsURL string
	client     *http.Client
}

// NewPlacesPrefetcher creates a prefetcher against the production endpoints
func NewPlacesPrefetcher(apiKey string) *PlacesPrefetcher {
	return &PlacesPrefetcher{
		APIKey:     apiKey,
		SearchURL:  "https://places.googleapis.com/v1/places:searchText",
		DetailsURL: "https://maps.googleapis.com/maps/api/place/details/json",
		client:     utils.NewHTTPClient(30 * time.Second),
	}
}

// Name implements Prefetcher
func (p *PlacesPrefetcher) Name() string { return "places" }

type placeSearchResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
	} `json:"places"`
}

type placeDetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name             string  `json:"name"`
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Reviews          []struct {
			AuthorName              string  `json:"author_name"`
			Rating                  float64 `json:"rating"`
			RelativeTimeDescription string  `json:"relative_time_description"`
			Text                    string  `json:"text"`
		} `json:"reviews"`
	} `json:"result"`
}

// Fetch resolves the place and formats its newest reviews as a prompt section
func (p *PlacesPrefetcher) Fetch(ctx context.Context, location string) (PrefetchSection, error) {
	if p.APIKey == "" {
		return PrefetchSection{}, errors.New("GOOGLE_PLACES_API_KEY not configured")
	}

	placeID, err := p.findPlaceID(ctx, "COBS Bread "+location)
	if err != nil {
		return PrefetchSection{}, err
	}

	details, err := p.placeDetails(ctx, placeID)
	if err != nil {
		return PrefetchSection{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n", details.Result.Name, details.Result.FormattedAddress)
	fmt.Fprintf(&b, "Google rating: %.1f across %d ratings\n\n", details.Result.Rating, details.Result.UserRatingsTotal)
	fmt.Fprintf(&b, "Most recent Google reviews:\n")
	for _, r := range details.Result.Reviews {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			text = "(no text)"
		}
		fmt.Fprintf(&b, "- %.0f stars, %s, by %s: %s\n", r.Rating, r.RelativeTimeDescription, r.AuthorName, text)
	}

	return PrefetchSection{Title: "Google Places Reviews", Content: b.String()}, nil
}

func (p *PlacesPrefetcher) findPlaceID(ctx context.Context, query string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"textQuery": query})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.SearchURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", p.APIKey)
	req.Header.Set("X-Goog-FieldMask", "places.id,places.displayName,places.formattedAddress")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("place search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("place search returned status %d: %s", resp.StatusCode, string(body))
	}

	var search placeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return "", fmt.Errorf("failed to decode place search response: %w", err)
	}
	if len(search.Places) == 0 {
		return "", fmt.Errorf("no place found for %q", query)
	}
	return search.Places[0].ID, nil
}

func (p *PlacesPrefetcher) placeDetails(ctx context.Context, placeID string) (*placeDetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,rating,user_ratings_total,reviews")
	// The legacy details API is the one that supports newest-first sorting
	params.Set("reviews_sort", "newest")
	params.Set("key", p.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.DetailsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place details failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place details returned status %d", resp.StatusCode)
	}

	var details placeDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to decode place details response: %w", err)
	}
	if details.Status != "OK" {
		return nil, fmt.Errorf("place details API error: %s %s", details.Status, details.ErrorMessage)
	}
	return &details, nil
}
