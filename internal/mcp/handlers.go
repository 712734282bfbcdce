package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/counselhq/counsel/internal/config"
	"github.com/counselhq/counsel/internal/errors"
	"github.com/counselhq/counsel/internal/input"
	"github.com/counselhq/counsel/internal/ops"
	"github.com/counselhq/counsel/internal/reason"
	"github.com/counselhq/counsel/internal/session"
)

// ServiceFactory builds a reasoning service, failing when the credential
// is absent. Resolving it per call keeps counsel_validate usable without
// credentials.
type ServiceFactory func() (reason.Service, error)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg        *config.Config
	store      session.Store
	newService ServiceFactory
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config, store session.Store, newService ServiceFactory) *Handlers {
	return &Handlers{cfg: cfg, store: store, newService: newService}
}

// AskRequest represents the arguments for ask and validate.
type AskRequest struct {
	Action           string `json:"action"`
	Prompt           string `json:"prompt,omitempty"`
	Context          string `json:"context,omitempty"`
	Topic            string `json:"topic,omitempty"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
	PromptFile       string `json:"promptFile,omitempty"`
}

// toInput converts the wire arguments to a resolver request.
func (r AskRequest) toInput() input.Request {
	return input.Request{
		Action:           input.Action(r.Action),
		Prompt:           r.Prompt,
		Context:          r.Context,
		Topic:            r.Topic,
		WorkingDirectory: r.WorkingDirectory,
		PromptFile:       r.PromptFile,
	}
}

// HandleAsk handles the ask tool call.
func (h *Handlers) HandleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[AskRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := args.toInput()
	if err := input.Finalize(&in, ""); err != nil {
		return errorResult(err), nil
	}

	svc, err := h.newService()
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Ask(ctx, svc, h.store, h.cfg, in)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleValidate handles the validate tool call. It never contacts the
// service and never mutates the session record.
func (h *Handlers) HandleValidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := decode[AskRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := args.toInput()
	if err := input.Finalize(&in, ""); err != nil {
		return errorResult(err), nil
	}

	return successResult(input.NewReport(&in))
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Status(h.store))
}

// HandleReset handles the reset tool call.
func (h *Handlers) HandleReset(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Reset(h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if cErr, ok := err.(*errors.CounselError); ok {
		errorObj := map[string]any{
			"code":    cErr.Code,
			"message": cErr.Message,
			"status":  cErr.Status,
		}
		// Internal details stay out of the payload to avoid leaking
		// paths or transport errors to the client.
		if cErr.Code != errors.ErrInternal && cErr.Details != nil {
			errorObj["details"] = cErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
