// Package mcp serves a built symbol graph to MCP clients over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	cndebug "github.com/standardbeagle/codenodes/internal/debug"
	"github.com/standardbeagle/codenodes/internal/query"
	"github.com/standardbeagle/codenodes/internal/version"
)

// ServerName is reported to clients during initialization
const ServerName = "codenodes-mcp-server"

// ErrNoGraph is returned by every tool until the first build finishes
var ErrNoGraph = errors.New("symbol graph has not been built yet")

// Server answers symbol queries against the most recent index. The index
// is swapped atomically when watch mode rebuilds the graph.
type Server struct {
	mu     sync.RWMutex
	index  *query.Index
	server *mcp.Server
	log    *slog.Logger
}

// NewServer creates a server over ix, which may be nil until SetIndex is
// called.
func NewServer(ctx context.Context, ix *query.Index) *Server {
	s := &Server{
		index: ix,
		log:   cndebug.Ctx(cndebug.Component(ctx, "mcp")),
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version.Info(),
		}, nil),
	}
	s.registerTools()
	return s
}

// SetIndex replaces the index served to clients
func (s *Server) SetIndex(ix *query.Index) {
	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
}

func (s *Server) current() (*query.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, ErrNoGraph
	}
	return s.index, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "graph_stats",
		Description: "Count the symbols and reference edges in the current graph, grouped by kind.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.wrap("graph_stats", s.handleGraphStats))

	s.server.AddTool(&mcp.Tool{
		Name:        "find_symbol",
		Description: "Find C/C++ symbols by qualified or local name. Falls back to fuzzy matching when there is no exact hit.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Name to look up, e.g. 'ns::Widget' or 'render'",
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum fuzzy matches to return",
				},
			},
			Required: []string{"query"},
		},
	}, s.wrap("find_symbol", s.handleFindSymbol))

	s.server.AddTool(&mcp.Tool{
		Name:        "symbol_references",
		Description: "List what a symbol references and what references it.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {
					Type:        "string",
					Description: "Qualified or local symbol name",
				},
			},
			Required: []string{"name"},
		},
	}, s.wrap("symbol_references", s.handleSymbolReferences))
}

// wrap turns handler errors and panics into tool error results so the
// client sees them instead of a protocol failure.
func (s *Server) wrap(operation string, handler mcp.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("tool panicked",
					slog.String("tool", operation),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
			}
		}()

		result, err = handler(ctx, req)
		if err != nil {
			s.log.Debug("tool failed", slog.String("tool", operation), slog.Any("error", err))
			return createErrorResponse(operation, err)
		}
		return result, nil
	}
}

// Run serves over stdio until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server", slog.String("transport", "stdio"))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
