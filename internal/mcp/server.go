package mcp

import (
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/counselhq/counsel/internal/config"
)

// Tool definitions

var askToolDef = mcp.NewTool("counsel_ask",
	mcp.WithDescription("Ask the external reasoning model for a review or follow-up answer. Continuing reuses the persisted conversation thread."),
	mcp.WithString("action", mcp.Required(), mcp.Enum("new", "continue"),
		mcp.Description("Start a new conversation thread or continue the persisted one")),
	mcp.WithString("prompt",
		mcp.Description("Question or review request (required unless promptFile is given)")),
	mcp.WithString("context",
		mcp.Description("Optional context prepended to the prompt with a blank line between them")),
	mcp.WithString("topic",
		mcp.Description("Optional short label recorded on the session")),
	mcp.WithString("workingDirectory",
		mcp.Description("Optional path granting the model read access to a codebase")),
	mcp.WithString("promptFile",
		mcp.Description("Optional path whose contents replace the prompt entirely")),
)

var validateToolDef = mcp.NewTool("counsel_validate",
	mcp.WithDescription("Validate a request without calling the reasoning service. Reports the action, prompt length, and which optional fields are present."),
	mcp.WithString("action", mcp.Required(), mcp.Enum("new", "continue"),
		mcp.Description("Action to validate")),
	mcp.WithString("prompt",
		mcp.Description("Question or review request (required unless promptFile is given)")),
	mcp.WithString("context",
		mcp.Description("Optional context")),
	mcp.WithString("topic",
		mcp.Description("Optional topic label")),
	mcp.WithString("workingDirectory",
		mcp.Description("Optional codebase path")),
	mcp.WithString("promptFile",
		mcp.Description("Optional path whose contents replace the prompt")),
)

var statusToolDef = mcp.NewTool("counsel_status",
	mcp.WithDescription("Show the persisted session record: thread id, topic, message count, and working directory."),
)

var resetToolDef = mcp.NewTool("counsel_reset",
	mcp.WithDescription("Delete the persisted session record so the next continue starts a fresh thread."),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"counsel_ask": {
		def:     askToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAsk },
	},
	"counsel_validate": {
		def:     validateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleValidate },
	},
	"counsel_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"counsel_reset": {
		def:     resetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReset },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with counsel tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(cfg *config.Config, h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"counsel",
		version,
		server.WithToolCapabilities(true),
	)

	for _, name := range ValidateDisabledTools(cfg.DisabledTools) {
		log.Printf("warning: unknown disabled tool %q", name)
	}

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(cfg *config.Config, h *Handlers, version string) error {
	return server.ServeStdio(NewServer(cfg, h, version))
}
