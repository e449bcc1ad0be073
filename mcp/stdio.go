package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	reqctx "github.com/skyhop/flightsearch/context"
	"github.com/skyhop/flightsearch/log"
)

// StdioTransport serves JSON-RPC over line-delimited stdin/stdout. Requests
// are handled one at a time: the next line is not read until the current
// request, including any upstream call, has been answered.
type StdioTransport struct {
	server *Server
	reader *bufio.Reader
	out    io.Writer
}

// NewStdioTransport creates a transport reading from in and writing to out
func NewStdioTransport(server *Server, in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{
		server: server,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run serves requests until the input stream closes
func (t *StdioTransport) Run(ctx context.Context) error {
	log.Info(ctx, "Starting flight search MCP server on stdio")

	for {
		line, err := t.reader.ReadString('\n')

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			t.handleLine(ctx, trimmed)
		}

		if err != nil {
			if err == io.EOF {
				log.Info(ctx, "EOF received, shutting down")
				return nil
			}
			return fmt.Errorf("failed to read request: %w", err)
		}
	}
}

// handleLine dispatches a single request line. Failures never escape: a bad
// line yields an error response and the loop keeps serving.
func (t *StdioTransport) handleLine(ctx context.Context, line string) {
	ctx = reqctx.WithRequestID(ctx, reqctx.NewRequestID())

	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		log.Errorf(ctx, "JSON decode error: %v", err)
		t.write(ctx, NewError(nil, CodeParseError, fmt.Sprintf("Parse error: %v", err)))
		return
	}

	log.Debugf(ctx, "Processing method: %s", req.Method)

	resp := t.server.Handle(ctx, &req)
	if resp == nil {
		return
	}
	t.write(ctx, resp)
}

func (t *StdioTransport) write(ctx context.Context, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorf(ctx, "Error encoding response: %v", err)
		return
	}
	if _, err := t.out.Write(append(data, '\n')); err != nil {
		log.Errorf(ctx, "Error sending response: %v", err)
	}
}
