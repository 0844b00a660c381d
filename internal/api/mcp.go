package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/csvchat/internal/metrics"
)

const metadataURI = "dataset://metadata"

// NewMCPServer creates an MCP server exposing the query interpreter as a
// tool and the dataset metadata as a resource.
func NewMCPServer(q Querier, m *metrics.Metrics, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"csvchat",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("csvchat answers keyword questions about a tabular dataset, such as \"show all crops in INDORE zone\" or \"total sales\"."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("query_dataset",
			mcp.WithDescription("Ask a free-text question about the loaded dataset and get the formatted answer."),
			mcp.WithString("text", mcp.Description("The question, e.g. \"sales by zone\""), mcp.Required()),
		),
		mcpQuery(q, m),
	)

	s.AddResource(
		mcp.NewResource(
			metadataURI,
			"Dataset Metadata",
			mcp.WithResourceDescription("Distinct values of the dataset's lookup columns as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceMetadata(q),
	)

	return s
}

func mcpQuery(q Querier, m *metrics.Metrics) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		start := time.Now()
		res := q.Interpret(text)
		m.ObserveQuery("mcp", string(res.Intent), string(res.Kind), time.Since(start))

		if !res.Handled() {
			return mcpError(res.String()), nil
		}
		return mcpText(res.String()), nil
	}
}

func mcpResourceMetadata(q Querier) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(q.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
