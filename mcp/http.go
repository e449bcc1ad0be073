package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	reqctx "github.com/skyhop/flightsearch/context"
	"github.com/skyhop/flightsearch/log"
)

// HTTPServer serves the same dispatcher over HTTP: one JSON-RPC request per
// POST body. Unlike the stdio transport, requests may be handled
// concurrently; the dispatcher's initialized flag is atomic for that reason.
type HTTPServer struct {
	server *Server
	addr   string
}

// NewHTTPServer creates an HTTP transport listening on the given port
func NewHTTPServer(server *Server, port int) *HTTPServer {
	return &HTTPServer{
		server: server,
		addr:   fmt.Sprintf(":%d", port),
	}
}

// Run serves until the listener fails
func (h *HTTPServer) Run(ctx context.Context) error {
	log.Infof(ctx, "Starting flight search MCP server on http %s", h.addr)

	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (h *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := reqctx.WithRequestID(r.Context(), reqctx.NewRequestID())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		log.Errorf(ctx, "JSON decode error: %v", err)
		writeJSON(ctx, w, NewError(nil, CodeParseError, fmt.Sprintf("Parse error: %v", err)))
		return
	}

	resp := h.server.Handle(ctx, &req)
	if resp == nil {
		// Notification: acknowledge without a body
		w.WriteHeader(http.StatusAccepted)
	} else {
		writeJSON(ctx, w, resp)
	}

	log.Infof(ctx, "http request rpc_method=%s duration_ms=%d", req.Method, time.Since(start).Milliseconds())
}

func writeJSON(ctx context.Context, w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf(ctx, "Error encoding response: %v", err)
	}
}
