package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/cramdeck/cramdeck/internal/chunker"
	"github.com/cramdeck/cramdeck/internal/config"
	"github.com/cramdeck/cramdeck/internal/embedder"
	"github.com/cramdeck/cramdeck/internal/llm"
	"github.com/cramdeck/cramdeck/internal/pipeline"
	"github.com/cramdeck/cramdeck/internal/rescache"
	"github.com/cramdeck/cramdeck/internal/retry"
	"github.com/cramdeck/cramdeck/internal/store"
	"github.com/cramdeck/cramdeck/internal/studygen"
)

const (
	// ServerName is the MCP server name
	ServerName = "cramdeck"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	store    store.Store
	embedder *embedder.Tiered
	pipe     *pipeline.Pipeline
	llm      *llm.Client
	cache    *rescache.Cache
	study    *studygen.Generator
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config) (*Server, error) {
	dbPath, err := ExpandHome(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	recordStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	emb := embedder.New(embedder.Config{
		LocalEnabled: cfg.UseLocalEmbeddings,
		APIKey:       cfg.OpenAIAPIKey,
	})

	retryCfg := retry.Default()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	gen := llm.NewClient(cfg.GenerationBaseURL, cfg.OpenRouterAPIKey,
		llm.WithModel(cfg.GenerationModel),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTimeout(cfg.GenTimeout()),
		llm.WithRetry(retryCfg),
	)

	pipe := pipeline.New(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), emb, gen)
	cache := rescache.New(cfg.CacheTTL(), cfg.CacheMaxEntries)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		store:    recordStore,
		embedder: emb,
		pipe:     pipe,
		llm:      gen,
		cache:    cache,
		study:    studygen.New(pipe, recordStore, cache),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(ingestDocumentTool(), s.handleIngestDocument)
	s.mcp.AddTool(queryDocumentsTool(), s.handleQueryDocuments)
	s.mcp.AddTool(generateNotecardsTool(), s.handleGenerateNotecards)
	s.mcp.AddTool(generateQuizTool(), s.handleGenerateQuiz)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	s.mcp.AddTool(clearCacheTool(), s.handleClearCache)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
