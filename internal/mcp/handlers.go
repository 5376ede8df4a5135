package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codenodes/internal/symbols"
)

// FindParams are the arguments of find_symbol
type FindParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// ReferencesParams are the arguments of symbol_references
type ReferencesParams struct {
	Name string `json:"name"`
}

// SymbolInfo describes one symbol in a tool response
type SymbolInfo struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	USR      string  `json:"usr,omitempty"`
	Complete bool    `json:"complete"`
	Score    float64 `json:"score,omitempty"`
}

// FindResponse is returned by find_symbol. Exact is false when the
// results came from fuzzy matching.
type FindResponse struct {
	Query   string       `json:"query"`
	Exact   bool         `json:"exact"`
	Symbols []SymbolInfo `json:"symbols"`
}

// References lists the edges around one symbol
type References struct {
	Symbol     SymbolInfo `json:"symbol"`
	References []string   `json:"references"`
	ReferredBy []string   `json:"referred_by"`
}

// ReferencesResponse is returned by symbol_references. A local name may
// match several symbols, each reported separately.
type ReferencesResponse struct {
	Name    string       `json:"name"`
	Matches []References `json:"matches"`
}

type notFoundError struct {
	name        string
	suggestions []string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("no symbol named %q", e.name)
}

func info(sym *symbols.Symbol) SymbolInfo {
	return SymbolInfo{
		Name:     sym.DisplayName,
		Kind:     sym.KindName(),
		USR:      sym.USR,
		Complete: sym.Complete(),
	}
}

func names(syms []*symbols.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.DisplayName
	}
	return out
}

func decode(req *mcp.CallToolRequest, v any) error {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (s *Server) handleGraphStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ix, err := s.current()
	if err != nil {
		return nil, err
	}
	return createJSONResponse(ix.Stats())
}

func (s *Server) handleFindSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params FindParams
	if err := decode(req, &params); err != nil {
		return nil, err
	}
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, errors.New("query is required")
	}
	ix, err := s.current()
	if err != nil {
		return nil, err
	}

	resp := FindResponse{Query: params.Query, Symbols: []SymbolInfo{}}
	if exact := ix.Find(params.Query); len(exact) > 0 {
		resp.Exact = true
		for _, sym := range exact {
			si := info(sym)
			si.Score = 1
			resp.Symbols = append(resp.Symbols, si)
		}
		return createJSONResponse(resp)
	}

	for _, m := range ix.Search(params.Query, params.Limit) {
		si := info(m.Symbol)
		si.Score = m.Score
		resp.Symbols = append(resp.Symbols, si)
	}
	return createJSONResponse(resp)
}

func (s *Server) handleSymbolReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ReferencesParams
	if err := decode(req, &params); err != nil {
		return nil, err
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, errors.New("name is required")
	}
	ix, err := s.current()
	if err != nil {
		return nil, err
	}

	found := ix.Find(params.Name)
	if len(found) == 0 {
		nf := &notFoundError{name: params.Name}
		for _, m := range ix.Search(params.Name, 3) {
			nf.suggestions = append(nf.suggestions, m.Symbol.DisplayName)
		}
		return nil, nf
	}

	resp := ReferencesResponse{Name: params.Name}
	for _, sym := range found {
		resp.Matches = append(resp.Matches, References{
			Symbol:     info(sym),
			References: names(ix.Outgoing(sym.Handle)),
			ReferredBy: names(ix.Incoming(sym.Handle)),
		})
	}
	return createJSONResponse(resp)
}

// Handler returns the registered handler for a tool, for in-process callers
func (s *Server) Handler(tool string) (mcp.ToolHandler, bool) {
	switch tool {
	case "graph_stats":
		return s.wrap(tool, s.handleGraphStats), true
	case "find_symbol":
		return s.wrap(tool, s.handleFindSymbol), true
	case "symbol_references":
		return s.wrap(tool, s.handleSymbolReferences), true
	}
	return nil, false
}
