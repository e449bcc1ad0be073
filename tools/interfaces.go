package tools

import "context"

// Tool defines the interface for all callable tools
type Tool interface {
	// Name returns the unique name of the tool (e.g. "search_flights")
	Name() string

	// Description returns a description of what the tool does and its arguments
	Description() string

	// InputSchema returns the JSON Schema describing the tool's arguments
	InputSchema() map[string]interface{}

	// Execute runs the tool with the given arguments
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}
