package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cramdeck/cramdeck/internal/embedder"
	"github.com/cramdeck/cramdeck/internal/retriever"
)

// DefaultTopK is how many chunks are retrieved when the caller does not say.
const DefaultTopK = 5

// Stage labels the pipeline step a failure occurred in.
type Stage string

const (
	StageChunking    Stage = "chunking"
	StageEmbedChunks Stage = "embedding_chunks"
	StageEmbedQuery  Stage = "embedding_query"
	StageRetrieval   Stage = "retrieval"
	StageGeneration  Stage = "generation"
)

// Timings is the per-stage elapsed time breakdown, recorded regardless of
// success for diagnostics.
type Timings struct {
	Chunking   time.Duration `json:"chunking"`
	Embedding  time.Duration `json:"embedding"`
	Retrieval  time.Duration `json:"retrieval"`
	Generation time.Duration `json:"generation"`
	Total      time.Duration `json:"total"`
}

// Result is the outcome of one pipeline run. Expected failures are reported
// here, not as errors: Success false plus FailedStage and Err.
type Result struct {
	Success         bool          `json:"success"`
	Query           string        `json:"query"`
	Response        string        `json:"response"`
	RetrievedChunks []string      `json:"retrieved_chunks"`
	EmbeddingTier   embedder.Tier `json:"embedding_tier"`
	Partial         bool          `json:"partial"`
	FailedStage     Stage         `json:"failed_stage,omitempty"`
	Err             string        `json:"error,omitempty"`
	Timings         Timings       `json:"timings"`
}

// Chunker splits document text into retrieval units.
type Chunker interface {
	Chunk(text string) []string
}

// Embedder turns texts into vectors and reports which tier served them.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (*embedder.BatchResult, error)
}

// Generator composes an answer from the query and retrieved context.
type Generator interface {
	Generate(ctx context.Context, query, contextText string) (string, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	chunker   Chunker
	embedder  Embedder
	generator Generator
}

// New creates a Pipeline from its stage implementations.
func New(chunker Chunker, emb Embedder, gen Generator) *Pipeline {
	return &Pipeline{chunker: chunker, embedder: emb, generator: gen}
}

// Process runs document and query through every stage and returns the
// result. topK zero means DefaultTopK; a negative topK is a caller bug and
// panics.
func (p *Pipeline) Process(ctx context.Context, document, query string, topK int) *Result {
	if topK < 0 {
		panic(fmt.Sprintf("pipeline: top_k must not be negative, got %d", topK))
	}
	if topK == 0 {
		topK = DefaultTopK
	}

	start := time.Now()
	result := &Result{Query: query}
	defer func() {
		result.Timings.Total = time.Since(start)
	}()

	// Chunking
	chunkStart := time.Now()
	chunks := p.chunker.Chunk(document)
	result.Timings.Chunking = time.Since(chunkStart)

	if len(chunks) == 0 {
		return result.fail(StageChunking, "failed to create chunks from document")
	}

	// Embedding: chunks, then query
	embedStart := time.Now()
	chunkBatch, err := p.embedder.Embed(ctx, chunks)
	if err != nil || len(chunkBatch.Vectors) != len(chunks) {
		result.Timings.Embedding = time.Since(embedStart)
		return result.fail(StageEmbedChunks, "failed to generate embeddings for chunks")
	}
	result.EmbeddingTier = chunkBatch.Tier

	if strings.TrimSpace(query) == "" {
		result.Timings.Embedding = time.Since(embedStart)
		return result.fail(StageEmbedQuery, "no content to process: empty query")
	}

	queryBatch, err := p.embedder.Embed(ctx, []string{query})
	result.Timings.Embedding = time.Since(embedStart)
	if err != nil || len(queryBatch.Vectors) != 1 || len(queryBatch.Vectors[0]) == 0 {
		return result.fail(StageEmbedQuery, "failed to generate embedding for query")
	}
	result.EmbeddingTier = worseTier(result.EmbeddingTier, queryBatch.Tier)

	// Retrieval
	retrievalStart := time.Now()
	scored := make([]retriever.Scored, len(chunks))
	for i, text := range chunks {
		scored[i] = retriever.Scored{Text: text, Vector: chunkBatch.Vectors[i]}
	}
	retrieved := retriever.Retrieve(queryBatch.Vectors[0], scored, topK)
	result.Timings.Retrieval = time.Since(retrievalStart)

	if len(retrieved) == 0 {
		return result.fail(StageRetrieval, "no relevant content could be retrieved from the document")
	}
	result.RetrievedChunks = retrieved
	result.Partial = len(retrieved) < topK

	// Generation
	genStart := time.Now()
	response, err := p.generator.Generate(ctx, query, strings.Join(retrieved, "\n\n"))
	result.Timings.Generation = time.Since(genStart)

	if err != nil {
		return result.fail(StageGeneration, err.Error())
	}
	if strings.TrimSpace(response) == "" {
		return result.fail(StageGeneration, "generation returned an empty response")
	}

	result.Success = true
	result.Response = response
	return result
}

func (r *Result) fail(stage Stage, msg string) *Result {
	r.Success = false
	r.FailedStage = stage
	r.Err = msg
	return r
}

// worseTier keeps the most degraded tier seen across the chunk and query
// embeddings, so a run that fell back to random vectors anywhere says so.
func worseTier(a, b embedder.Tier) embedder.Tier {
	rank := func(t embedder.Tier) int {
		switch t {
		case embedder.TierLocal:
			return 0
		case embedder.TierRemote:
			return 1
		case embedder.TierRandom:
			return 2
		default:
			return -1
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
