package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlacesPrefetcherFetch(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/places:searchText":
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "places-key", r.Header.Get("X-Goog-Api-Key"))
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "COBS Bread Test St.", body["textQuery"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"places": []map[string]interface{}{
					{
						"id":               "place-7",
						"displayName":      map[string]string{"text": "COBS Bread Test St."},
						"formattedAddress": "123 Test St, Vancouver, BC",
					},
				},
			})

		case "/details/json":
			assert.Equal(t, "place-7", r.URL.Query().Get("place_id"))
			assert.Equal(t, "newest", r.URL.Query().Get("reviews_sort"))
			assert.Equal(t, "places-key", r.URL.Query().Get("key"))

			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "OK",
				"result": map[string]interface{}{
					"name":               "COBS Bread Test St.",
					"formatted_address":  "123 Test St, Vancouver, BC",
					"rating":             4.3,
					"user_ratings_total": 212,
					"reviews": []map[string]interface{}{
						{
							"author_name":               "Alex",
							"rating":                    5,
							"relative_time_description": "a week ago",
							"text":                      "Best sourdough in town",
						},
						{
							"author_name":               "Sam",
							"rating":                    2,
							"relative_time_description": "a month ago",
							"text":                      "Stale scones twice in a row",
						},
					},
				},
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer mockServer.Close()

	p := NewPlacesPrefetcher("places-key")
	p.SearchURL = mockServer.URL + "/v1/places:searchText"
	p.DetailsURL = mockServer.URL + "/details/json"

	section, err := p.Fetch(context.Background(), "Test St.")
	assert.NoError(t, err)
	assert.Equal(t, "Google Places Reviews", section.Title)
	assert.Contains(t, section.Content, "4.3 across 212 ratings")
	assert.Contains(t, section.Content, "Best sourdough in town")
	assert.Contains(t, section.Content, "Stale scones twice in a row")
}

func TestPlacesPrefetcherNoPlaceFound(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"places": []interface{}{}})
	}))
	defer mockServer.Close()

	p := NewPlacesPrefetcher("places-key")
	p.SearchURL = mockServer.URL

	_, err := p.Fetch(context.Background(), "Nowhere")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no place found")
}

func TestPlacesPrefetcherDetailsAPIError(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"places": []map[string]interface{}{{"id": "place-7"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":        "REQUEST_DENIED",
			"error_message": "API key invalid",
		})
	}))
	defer mockServer.Close()

	p := NewPlacesPrefetcher("places-key")
	p.SearchURL = mockServer.URL + "/search"
	p.DetailsURL = mockServer.URL + "/details"

	_, err := p.Fetch(context.Background(), "Test St.")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestPlacesPrefetcherMissingKey(t *testing.T) {
	p := NewPlacesPrefetcher("")
	_, err := p.Fetch(context.Background(), "Test St.")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_PLACES_API_KEY")
}
