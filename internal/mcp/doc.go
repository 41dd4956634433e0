// Package mcp implements the Model Context Protocol (MCP) server for cramdeck.
//
// The MCP server exposes six tools to MCP-compatible clients:
//   - ingest_document: Store course content (transcripts, recordings, assignments)
//   - query_documents: Answer questions over stored records with retrieval-augmented generation
//   - generate_notecards: Build front/back study cards from a record
//   - generate_quiz: Build multiple-choice questions from a record
//   - get_status: Report record counts, embedding tiers, and backend health
//   - clear_cache: Drop cached study generation results
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates via standard input/output; all logging goes to
// stderr so stdout stays clean for the protocol.
//
// # Tool: ingest_document
//
// Store a record for later querying. Scraped transcript payloads (JSON
// segment arrays) are flattened to plain text on the way in:
//
//	Request:
//	{
//	  "name": "ingest_document",
//	  "arguments": {
//	    "user_id": "u-123",
//	    "title": "Biology Lecture 4",
//	    "content": "[{\"timestamp\": \"00:01\", \"text\": \"...\"}]",
//	    "kind": "transcript",
//	    "course_id": "bio-101"
//	  }
//	}
//
//	Response:
//	{
//	  "id": "6f1c...",
//	  "title": "Biology Lecture 4",
//	  "kind": "transcript",
//	  "content_length": 8412,
//	  "created_at": "2026-03-01T10:00:00Z"
//	}
//
// # Tool: query_documents
//
// Run the RAG pipeline over one or more stored records:
//
//	Request:
//	{
//	  "name": "query_documents",
//	  "arguments": {
//	    "query": "What did the lecture say about osmosis?",
//	    "document_ids": ["6f1c...", "9a2e..."],
//	    "top_k": 5
//	  }
//	}
//
//	Response:
//	{
//	  "success": true,
//	  "response": "The lecture describes osmosis as ...",
//	  "retrieved_chunks": ["..."],
//	  "embedding_tier": "local",
//	  "partial": false,
//	  "document_count": 2,
//	  "timings_ms": {"chunking": 2, "embedding": 31, "retrieval": 1, "generation": 820, "total": 854}
//	}
//
// Expected pipeline failures (empty document, unreachable model) are
// reported in the payload with "success": false and a "failed_stage", so
// clients can distinguish a degraded answer from a malformed request.
// Protocol-level errors are reserved for invalid parameters.
//
// # Tool: generate_notecards / generate_quiz
//
// Synthesize study material from a record. Results are cached per
// (document, count, kind, difficulty); repeated calls do not re-run the
// model until the cache entry expires or clear_cache is called.
//
//	Request:
//	{
//	  "name": "generate_quiz",
//	  "arguments": {"document_id": "6f1c...", "count": 10, "difficulty": "hard"}
//	}
//
//	Response:
//	{
//	  "document_id": "6f1c...",
//	  "count": 10,
//	  "difficulty": "hard",
//	  "questions": [
//	    {"question": "...", "options": ["...", "...", "...", "..."], "answer": 2, "explanation": "..."}
//	  ]
//	}
//
// # Error Codes
//
// The server uses JSON-RPC error codes plus a small application range:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  referenced record does not exist
//	-32002  records resolved to no usable text
//	-32004  empty query
package mcp
