package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cramdeck/cramdeck/internal/store"
	"github.com/cramdeck/cramdeck/internal/studygen"
	"github.com/cramdeck/cramdeck/internal/transcript"
	"github.com/cramdeck/cramdeck/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeRecordNotFound = -32001 // Referenced record does not exist
	ErrorCodeNoContent      = -32002 // Records resolved to no usable text
	ErrorCodeEmptyQuery     = -32004 // Query parameter is empty
)

// handleIngestDocument handles the ingest_document tool invocation
func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	userID, ok := args["user_id"].(string)
	if !ok || userID == "" {
		return nil, missingParam("user_id")
	}
	title, ok := args["title"].(string)
	if !ok || title == "" {
		return nil, missingParam("title")
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return nil, missingParam("content")
	}
	kindStr, ok := args["kind"].(string)
	if !ok || kindStr == "" {
		return nil, missingParam("kind")
	}
	kind := types.RecordKind(kindStr)
	if !kind.Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "unknown record kind", map[string]interface{}{
			"param":   "kind",
			"value":   kindStr,
			"allowed": types.AllKinds,
		})
	}
	courseID, _ := args["course_id"].(string)

	// Scraped transcripts arrive as raw JSON segment dumps; flatten them
	if kind == types.KindTranscript {
		content = transcript.Extract([]byte(content))
		if content == "" {
			return nil, newMCPError(ErrorCodeNoContent, "transcript contained no text", nil)
		}
	}

	doc := &types.Document{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Kind:     kind,
		CourseID: courseID,
	}
	if err := s.store.PutRecord(ctx, doc); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to store record", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":             doc.ID,
		"title":          doc.Title,
		"kind":           string(doc.Kind),
		"content_length": len(doc.Content),
		"created_at":     doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleQueryDocuments handles the query_documents tool invocation
func (s *Server) handleQueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	ids := getStringSlice(args, "document_ids")
	if len(ids) == 0 {
		return nil, missingParam("document_ids")
	}

	topK := getIntDefault(args, "top_k", 0)
	if topK < 0 || topK > 20 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 20", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}

	content, err := s.store.AssembleContent(ctx, ids)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load records", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if content == "" {
		return nil, newMCPError(ErrorCodeNoContent, "no valid documents found", map[string]interface{}{
			"document_ids": ids,
		})
	}

	result := s.pipe.Process(ctx, content, query, topK)

	// Expected pipeline failures travel in the payload so the caller sees
	// which stage broke; protocol errors are reserved for bad requests.
	response := map[string]interface{}{
		"success":          result.Success,
		"query":            result.Query,
		"response":         result.Response,
		"retrieved_chunks": result.RetrievedChunks,
		"embedding_tier":   string(result.EmbeddingTier),
		"partial":          result.Partial,
		"document_count":   len(ids),
		"timings_ms": map[string]interface{}{
			"chunking":   result.Timings.Chunking.Milliseconds(),
			"embedding":  result.Timings.Embedding.Milliseconds(),
			"retrieval":  result.Timings.Retrieval.Milliseconds(),
			"generation": result.Timings.Generation.Milliseconds(),
			"total":      result.Timings.Total.Milliseconds(),
		},
	}
	if !result.Success {
		response["failed_stage"] = string(result.FailedStage)
		response["error"] = result.Err
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGenerateNotecards handles the generate_notecards tool invocation
func (s *Server) handleGenerateNotecards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, missingParam("document_id")
	}
	count := getIntDefault(args, "count", 0)

	cards, err := s.study.GenerateNotecards(ctx, documentID, count)
	if err != nil {
		return nil, studyError(err)
	}

	response := map[string]interface{}{
		"document_id": documentID,
		"count":       len(cards),
		"notecards":   cards,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGenerateQuiz handles the generate_quiz tool invocation
func (s *Server) handleGenerateQuiz(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return nil, missingParam("document_id")
	}
	count := getIntDefault(args, "count", 0)
	difficulty := getStringDefault(args, "difficulty", "medium")

	questions, err := s.study.GenerateQuiz(ctx, documentID, count, difficulty)
	if err != nil {
		return nil, studyError(err)
	}

	response := map[string]interface{}{
		"document_id": documentID,
		"count":       len(questions),
		"difficulty":  difficulty,
		"questions":   questions,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := s.store.ListRecords(ctx, store.Filter{})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count records", map[string]interface{}{
			"error": err.Error(),
		})
	}

	byKind := map[string]int{}
	for _, r := range records {
		byKind[string(r.Kind)]++
	}

	tiers := make([]string, 0, 3)
	for _, tier := range s.embedder.Tiers() {
		tiers = append(tiers, string(tier))
	}

	generation := map[string]interface{}{
		"model":     s.cfg.GenerationModel,
		"base_url":  s.cfg.GenerationBaseURL,
		"reachable": true,
	}
	if err := s.llm.Probe(ctx); err != nil {
		generation["reachable"] = false
		generation["error"] = err.Error()
	}

	response := map[string]interface{}{
		"server":          ServerName,
		"version":         ServerVersion,
		"build_mode":      store.BuildMode,
		"sqlite_driver":   store.DriverName,
		"record_count":    len(records),
		"records_by_kind": byKind,
		"embedding_tiers": tiers,
		"generation":      generation,
		"cache_entries":   s.cache.Len(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCache handles the clear_cache tool invocation
func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cleared := s.cache.Clear()

	response := map[string]interface{}{
		"cleared": cleared,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

// studyError maps study generation failures onto MCP error codes
func studyError(err error) error {
	switch {
	case errors.Is(err, studygen.ErrNoContent):
		return newMCPError(ErrorCodeRecordNotFound, "no content found for document", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, studygen.ErrBadDifficulty):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "difficulty",
		})
	default:
		return newMCPError(ErrorCodeInternalError, "study generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, dropping non-string items
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
