package tools

import "context"

// StatusResult is the fixed liveness payload
type StatusResult struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
}

// StatusTool reports server liveness. No inputs, no side effects and no
// dependency on the upstream credential.
type StatusTool struct {
	Server  string
	Version string
}

// NewStatusTool creates a StatusTool reporting the given server identity
func NewStatusTool(server, version string) *StatusTool {
	return &StatusTool{Server: server, Version: version}
}

func (t *StatusTool) Name() string {
	return "server_status"
}

func (t *StatusTool) Description() string {
	return "Check if the flight search server is running"
}

func (t *StatusTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *StatusTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return &StatusResult{
		Status:  "ok",
		Server:  t.Server,
		Version: t.Version,
	}, nil
}
