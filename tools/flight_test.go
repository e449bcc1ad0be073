package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyhop/flightsearch/providers/serpapi"
)

func testFlightTool(baseURL string) *FlightTool {
	t := NewFlightTool(serpapi.NewClient(baseURL, "USD", 5), 5)
	t.APIKey = func() string { return "test_key" }
	return t
}

// mockUpstream returns the given offers for every search
func mockUpstream(offers []serpapi.FlightOffer) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(serpapi.SearchResponse{BestFlights: offers})
	}))
}

func twoOffers() []serpapi.FlightOffer {
	return []serpapi.FlightOffer{
		{
			Price:         350,
			TotalDuration: 330,
			Flights: []serpapi.Segment{{
				DepartureAirport: serpapi.Airport{ID: "JFK", Time: "2025-07-01 08:15"},
				ArrivalAirport:   serpapi.Airport{ID: "LAX", Time: "2025-07-01 11:45"},
				Airline:          "Delta",
			}},
		},
		{
			Price:         410,
			TotalDuration: 415,
			Flights: []serpapi.Segment{
				{Airline: "United"},
				{Airline: "United"},
			},
		},
	}
}

func TestFlightTool_MissingArguments(t *testing.T) {
	ft := testFlightTool("http://unused.invalid")

	_, err := ft.Execute(context.Background(), map[string]interface{}{})
	assert.Error(t, err)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "origin")
	assert.Contains(t, validationErr.Message, "destination")
	assert.Contains(t, validationErr.Message, "outbound_date")
}

func TestFlightTool_InvalidDates(t *testing.T) {
	ft := testFlightTool("http://unused.invalid")

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			"BadOutboundDate",
			map[string]interface{}{"origin": "JFK", "destination": "LAX", "outbound_date": "07/01/2025"},
		},
		{
			"BadReturnDate",
			map[string]interface{}{"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01", "return_date": "next week"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ft.Execute(context.Background(), tt.args)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestFlightTool_MissingAPIKey(t *testing.T) {
	ft := testFlightTool("http://unused.invalid")
	ft.APIKey = func() string { return "" }

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	errResult, ok := result.(*ErrorResult)
	assert.True(t, ok, "expected *ErrorResult, got %T", result)
	assert.Equal(t, "error", errResult.Status)
	assert.Equal(t, "configuration", errResult.ErrorType)
	assert.Contains(t, errResult.Message, EnvSerpAPIKey)
}

func TestFlightTool_OneWay(t *testing.T) {
	ts := mockUpstream(twoOffers())
	defer ts.Close()

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	search, ok := result.(*SearchResult)
	assert.True(t, ok, "expected *SearchResult, got %T", result)
	assert.Equal(t, "success", search.Status)
	assert.Equal(t, TripTypeOneWay, search.TripType)
	assert.Len(t, search.Flights, 2)

	first := search.Flights[0]
	assert.Equal(t, float64(350), first.Price)
	assert.Equal(t, "2025-07-01 08:15", first.DepartureTime)
	assert.Equal(t, "2025-07-01 11:45", first.ArrivalTime)
	assert.Equal(t, "Delta", first.Airline)
	assert.Equal(t, 330, first.Duration)
	assert.Equal(t, 0, first.Stops)

	// Second offer has two segments, so one stop
	assert.Equal(t, 1, search.Flights[1].Stops)
}

func TestFlightTool_RoundTrip(t *testing.T) {
	ts := mockUpstream(twoOffers())
	defer ts.Close()

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01", "return_date": "2025-07-10",
	})
	assert.NoError(t, err)

	search := result.(*SearchResult)
	assert.Equal(t, TripTypeRoundTrip, search.TripType)
	assert.Equal(t, "2025-07-10", search.ReturnDate)
}

func TestFlightTool_EmptyResults(t *testing.T) {
	ts := mockUpstream(nil)
	defer ts.Close()

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	// Zero flights is a valid result, not an error, and serializes as []
	search := result.(*SearchResult)
	assert.Equal(t, "success", search.Status)
	assert.NotNil(t, search.Flights)
	assert.Len(t, search.Flights, 0)

	data, err := json.Marshal(search)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"flights":[]`)
}

func TestFlightTool_LimitsFlights(t *testing.T) {
	offers := make([]serpapi.FlightOffer, 8)
	for i := range offers {
		offers[i] = serpapi.FlightOffer{Price: float64(100 + i)}
	}
	ts := mockUpstream(offers)
	defer ts.Close()

	ft := testFlightTool(ts.URL)
	ft.Limit = 5

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	search := result.(*SearchResult)
	assert.Len(t, search.Flights, 5)
	// Upstream order preserved
	assert.Equal(t, float64(100), search.Flights[0].Price)
	assert.Equal(t, float64(104), search.Flights[4].Price)
}

func TestFlightTool_UpstreamStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limit exceeded"))
	}))
	defer ts.Close()

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	errResult := result.(*ErrorResult)
	assert.Equal(t, "upstream", errResult.ErrorType)
	assert.Equal(t, http.StatusTooManyRequests, errResult.HTTPStatus)
	assert.Contains(t, errResult.Message, "rate limit exceeded")
}

func TestFlightTool_UpstreamErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(serpapi.SearchResponse{Error: "Google Flights hasn't returned any results for this query."})
	}))
	defer ts.Close()

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	errResult := result.(*ErrorResult)
	assert.Equal(t, "upstream", errResult.ErrorType)
	assert.Contains(t, errResult.Message, "SerpAPI error")
}

func TestFlightTool_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	ft := testFlightTool(ts.URL)

	result, err := ft.Execute(context.Background(), map[string]interface{}{
		"origin": "JFK", "destination": "LAX", "outbound_date": "2025-07-01",
	})
	assert.NoError(t, err)

	errResult := result.(*ErrorResult)
	assert.Equal(t, "upstream", errResult.ErrorType)
}

func TestStatusTool(t *testing.T) {
	st := NewStatusTool("flight-search-server", "1.0.2")

	assert.Equal(t, "server_status", st.Name())

	result, err := st.Execute(context.Background(), nil)
	assert.NoError(t, err)

	status := result.(*StatusResult)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "flight-search-server", status.Server)
}
