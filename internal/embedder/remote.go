package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// RemoteBatchSize is deliberately small to stay under API rate limits.
	RemoteBatchSize = 5

	// InterBatchDelay is the pause between consecutive remote batches.
	InterBatchDelay = 2 * time.Second

	// DefaultRemoteURL is the hosted embedding endpoint.
	DefaultRemoteURL = "https://api.openai.com/v1/embeddings"

	// DefaultRemoteModel is the hosted embedding model.
	DefaultRemoteModel = "text-embedding-ada-002"

	remoteTimeout = 30 * time.Second
)

// RemoteProvider embeds through a hosted embedding API. It requires a
// credential and paces batches with a rate limiter so a long document does
// not trip the endpoint's rate limits.
type RemoteProvider struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
}

// NewRemoteProvider creates the remote embedding tier. apiKey must be
// non-empty; the factory skips this tier entirely when no credential is set.
func NewRemoteProvider(apiKey string, cache *Cache) (*RemoteProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return &RemoteProvider{
		apiKey: apiKey,
		url:    DefaultRemoteURL,
		model:  DefaultRemoteModel,
		httpClient: &http.Client{
			Timeout: remoteTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(InterBatchDelay), 1),
		cache:   cache,
	}, nil
}

func (r *RemoteProvider) Tier() Tier     { return TierRemote }
func (r *RemoteProvider) Dimension() int { return 1536 }

// Embed sends texts to the remote endpoint in batches of RemoteBatchSize,
// waiting out the inter-batch delay between calls.
func (r *RemoteProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	pending := make([]int, 0, len(texts))

	for i, text := range texts {
		if r.cache != nil {
			if v, ok := r.cache.Get(ComputeHash(text)); ok {
				vectors[i] = v
				continue
			}
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += RemoteBatchSize {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := start + RemoteBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		batch := make([]string, 0, end-start)
		for _, idx := range pending[start:end] {
			batch = append(batch, texts[idx])
		}

		encoded, err := r.callAPI(ctx, batch)
		if err != nil {
			return nil, err
		}

		for j, idx := range pending[start:end] {
			vectors[idx] = encoded[j]
			if r.cache != nil {
				r.cache.Set(ComputeHash(texts[idx]), encoded[j])
			}
		}
	}

	return vectors, nil
}

func (r *RemoteProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": r.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: api call: %v", ErrProviderFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: api error %d: %s", ErrProviderFailed, resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderFailed, err)
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrProviderFailed, len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range apiResp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", ErrProviderFailed, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
