package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexProjectTool returns the tool definition for index_project
func indexProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_project",
		Description: "Scan a Godot project and build the retrieval index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the Godot project root; defaults to the configured project root",
				},
			},
		},
	}
}

// retrieveContextTool returns the tool definition for retrieve_context
func retrieveContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve_context",
		Description: "Retrieve the project files most relevant to a query as a formatted text block",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or keyword query",
				},
				"k": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of documents to return (1-100)",
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query index status and statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
