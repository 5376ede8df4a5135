package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse wraps data as a single text content block
func createJSONResponse(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// errorBody is the payload of every failed tool call
type errorBody struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error"`
	Operation   string   `json:"operation"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// createErrorResponse reports err inside the result with IsError set, so
// the client can read the failure and retry.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	body := errorBody{Error: err.Error(), Operation: operation}
	var nf *notFoundError
	if errors.As(err, &nf) {
		body.Suggestions = nf.suggestions
	}

	response, marshalErr := createJSONResponse(body)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
