package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/skyhop/flightsearch/log"
	"github.com/skyhop/flightsearch/providers/serpapi"
)

// EnvSerpAPIKey is the environment variable holding the SerpAPI credential.
// It is read on every search, not at startup, so its absence only fails
// search_flights calls.
const EnvSerpAPIKey = "SERP_API_KEY"

const dateLayout = "2006-01-02"

// Trip types reported in search results
const (
	TripTypeOneWay    = "one_way"
	TripTypeRoundTrip = "round_trip"
)

// FlightOption is one simplified flight entry in a search result
type FlightOption struct {
	Price         float64 `json:"price"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Airline       string  `json:"airline"`
	Duration      int     `json:"duration"`
	Stops         int     `json:"stops"`
}

// SearchResult is the successful search_flights payload
type SearchResult struct {
	Status       string         `json:"status"`
	Origin       string         `json:"origin"`
	Destination  string         `json:"destination"`
	OutboundDate string         `json:"outbound_date"`
	ReturnDate   string         `json:"return_date,omitempty"`
	TripType     string         `json:"trip_type"`
	Flights      []FlightOption `json:"flights"`
}

// ErrorResult reports a configuration or upstream failure inside the tool
// result rather than as a protocol error, so the RPC itself still succeeds.
type ErrorResult struct {
	Status     string `json:"status"`
	ErrorType  string `json:"error_type"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// FlightTool searches for flights via SerpAPI Google Flights
type FlightTool struct {
	Client *serpapi.Client
	Limit  int

	// APIKey returns the upstream credential; overridable in tests
	APIKey func() string
}

// NewFlightTool creates a FlightTool returning at most limit flights per search
func NewFlightTool(client *serpapi.Client, limit int) *FlightTool {
	if limit <= 0 {
		limit = 5
	}
	return &FlightTool{
		Client: client,
		Limit:  limit,
		APIKey: func() string { return os.Getenv(EnvSerpAPIKey) },
	}
}

func (t *FlightTool) Name() string {
	return "search_flights"
}

func (t *FlightTool) Description() string {
	return "Search for flights between airports"
}

func (t *FlightTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"origin": map[string]interface{}{
				"type":        "string",
				"description": "Origin airport code (e.g., JFK, LAX)",
			},
			"destination": map[string]interface{}{
				"type":        "string",
				"description": "Destination airport code (e.g., JFK, LAX)",
			},
			"outbound_date": map[string]interface{}{
				"type":        "string",
				"description": "Departure date (YYYY-MM-DD)",
			},
			"return_date": map[string]interface{}{
				"type":        "string",
				"description": "Return date for round trip (YYYY-MM-DD)",
			},
		},
		"required": []string{"origin", "destination", "outbound_date"},
	}
}

// Execute validates the arguments, performs one upstream search and shapes
// the response. Configuration and upstream failures come back as an
// ErrorResult; argument problems come back as a *ValidationError.
func (t *FlightTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	origin, _ := args["origin"].(string)
	destination, _ := args["destination"].(string)
	outboundDate, _ := args["outbound_date"].(string)
	returnDate, _ := args["return_date"].(string)

	var missing []string
	if origin == "" {
		missing = append(missing, "origin")
	}
	if destination == "" {
		missing = append(missing, "destination")
	}
	if outboundDate == "" {
		missing = append(missing, "outbound_date")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("missing required arguments: %s", strings.Join(missing, ", "))}
	}

	if _, err := time.Parse(dateLayout, outboundDate); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("outbound_date %q is not a valid YYYY-MM-DD date", outboundDate)}
	}
	if returnDate != "" {
		if _, err := time.Parse(dateLayout, returnDate); err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("return_date %q is not a valid YYYY-MM-DD date", returnDate)}
		}
	}

	apiKey := t.APIKey()
	if apiKey == "" {
		log.Warnf(ctx, "search_flights called without %s set", EnvSerpAPIKey)
		return &ErrorResult{
			Status:    "error",
			ErrorType: "configuration",
			Message:   fmt.Sprintf("%s environment variable not set", EnvSerpAPIKey),
		}, nil
	}

	log.Infof(ctx, "Searching flights %s -> %s on %s", origin, destination, outboundDate)

	resp, err := t.Client.SearchFlights(ctx, &serpapi.Query{
		APIKey:       apiKey,
		Origin:       origin,
		Destination:  destination,
		OutboundDate: outboundDate,
		ReturnDate:   returnDate,
	})
	if err != nil {
		var statusErr *serpapi.StatusError
		if errors.As(err, &statusErr) {
			return &ErrorResult{
				Status:     "error",
				ErrorType:  "upstream",
				Message:    statusErr.Body,
				HTTPStatus: statusErr.StatusCode,
			}, nil
		}
		return &ErrorResult{
			Status:    "error",
			ErrorType: "upstream",
			Message:   fmt.Sprintf("API request failed: %v", err),
		}, nil
	}

	if resp.Error != "" {
		return &ErrorResult{
			Status:    "error",
			ErrorType: "upstream",
			Message:   fmt.Sprintf("SerpAPI error: %s", resp.Error),
		}, nil
	}

	offers := resp.BestFlights
	if len(offers) > t.Limit {
		offers = offers[:t.Limit]
	}

	// Zero flights is a valid empty result, so keep the slice non-nil
	flights := make([]FlightOption, 0, len(offers))
	for _, offer := range offers {
		opt := FlightOption{
			Price:    offer.Price,
			Duration: offer.TotalDuration,
		}
		if len(offer.Flights) > 0 {
			first := offer.Flights[0]
			opt.DepartureTime = first.DepartureAirport.Time
			opt.ArrivalTime = first.ArrivalAirport.Time
			opt.Airline = first.Airline
			opt.Stops = len(offer.Flights) - 1
		}
		flights = append(flights, opt)
	}

	tripType := TripTypeOneWay
	if returnDate != "" {
		tripType = TripTypeRoundTrip
	}

	log.Infof(ctx, "Found %d flights for %s -> %s", len(flights), origin, destination)

	return &SearchResult{
		Status:       "success",
		Origin:       origin,
		Destination:  destination,
		OutboundDate: outboundDate,
		ReturnDate:   returnDate,
		TripType:     tripType,
		Flights:      flights,
	}, nil
}
