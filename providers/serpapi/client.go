// Package serpapi wraps the SerpAPI Google Flights endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skyhop/flightsearch/log"
)

// DefaultBaseURL is the production SerpAPI endpoint
const DefaultBaseURL = "https://serpapi.com"

// Trip type codes used by the google_flights engine
const (
	tripTypeRoundTrip = "1"
	tripTypeOneWay    = "2"
)

// Client handles SerpAPI requests
type Client struct {
	BaseURL    string
	Currency   string
	HTTPClient *http.Client
}

// NewClient creates a new SerpAPI client
func NewClient(baseURL, currency string, timeoutSeconds int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		Currency:   currency,
		HTTPClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// Query describes one flight search. ReturnDate empty means one way.
type Query struct {
	APIKey       string
	Origin       string
	Destination  string
	OutboundDate string
	ReturnDate   string
}

// SearchResponse is the subset of the google_flights payload we consume
type SearchResponse struct {
	Error        string        `json:"error,omitempty"`
	BestFlights  []FlightOffer `json:"best_flights"`
	OtherFlights []FlightOffer `json:"other_flights"`
}

// FlightOffer is one priced itinerary; Flights holds its segments
type FlightOffer struct {
	Flights       []Segment `json:"flights"`
	TotalDuration int       `json:"total_duration"`
	Price         float64   `json:"price"`
}

// Segment is a single leg of an itinerary
type Segment struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Airline          string  `json:"airline"`
	FlightNumber     string  `json:"flight_number"`
	Duration         int     `json:"duration"`
}

// Airport identifies an endpoint of a segment
type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

// StatusError reports a non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serpapi request failed with status %d: %s", e.StatusCode, e.Body)
}

// SearchFlights performs one google_flights search
func (c *Client) SearchFlights(ctx context.Context, q *Query) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.OutboundDate)
	params.Set("currency", c.Currency)
	params.Set("api_key", q.APIKey)

	if q.ReturnDate != "" {
		params.Set("return_date", q.ReturnDate)
		params.Set("type", tripTypeRoundTrip)
	} else {
		params.Set("type", tripTypeOneWay)
	}

	endpoint := fmt.Sprintf("%s/search?%s", c.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "SearchFlights: request failed: %v", err)
		return nil, fmt.Errorf("flight search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Errorf(ctx, "SearchFlights: API returned status %s", resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
