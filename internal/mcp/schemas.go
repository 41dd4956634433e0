package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ingestDocumentTool returns the tool definition for ingest_document
func ingestDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_document",
		Description: "Store a piece of course content (transcript, recording, or assignment) for later querying",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Owner of the record",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable record title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Record body: plain text, or raw scraped transcript JSON (timestamped segments are flattened automatically)",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "What sort of content this is",
					"enum":        []string{"transcript", "recording", "assignment"},
				},
				"course_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional course the record belongs to",
				},
			},
			Required: []string{"user_id", "title", "content", "kind"},
		},
	}
}

// queryDocumentsTool returns the tool definition for query_documents
func queryDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_documents",
		Description: "Answer a question from one or more stored records using retrieval-augmented generation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"document_ids": map[string]interface{}{
					"type":        "array",
					"description": "Record IDs to search; their bodies are concatenated before retrieval",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of chunks to retrieve (1-20)",
					"default":     5,
					"minimum":     1,
					"maximum":     20,
				},
			},
			Required: []string{"query", "document_ids"},
		},
	}
}

// generateNotecardsTool returns the tool definition for generate_notecards
func generateNotecardsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_notecards",
		Description: "Build front/back study notecards from a stored record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Record to generate cards from",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of cards to generate (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// generateQuizTool returns the tool definition for generate_quiz
func generateQuizTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_quiz",
		Description: "Build multiple-choice quiz questions from a stored record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document_id": map[string]interface{}{
					"type":        "string",
					"description": "Record to generate questions from",
				},
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of questions to generate (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
				"difficulty": map[string]interface{}{
					"type":        "string",
					"description": "Question difficulty",
					"enum":        []string{"easy", "medium", "hard"},
					"default":     "medium",
				},
			},
			Required: []string{"document_id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report record counts, embedding tier availability, and generation backend health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCacheTool returns the tool definition for clear_cache
func clearCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop all cached study generation results",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
