package embedding

import (
	"context"
	"math"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// RemoteEmbedder talks to an OpenAI-compatible /v1/embeddings endpoint
// (e.g. a local llama-server). On any failure it returns a deterministic
// fallback vector instead of an error, so index and retrieval math never
// receive a ragged or missing entry.
type RemoteEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	timeout    time.Duration
	logger     *zap.Logger
}

// RemoteConfig configures a RemoteEmbedder.
type RemoteConfig struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// RemoteOption configures a RemoteEmbedder.
type RemoteOption func(*RemoteEmbedder)

// WithLogger sets a logger for embedding failures and fallback events.
func WithLogger(l *zap.Logger) RemoteOption {
	return func(e *RemoteEmbedder) { e.logger = l }
}

// NewRemoteEmbedder creates an embedder against the configured endpoint.
// The API key is read from the environment; local servers accept any value.
func NewRemoteEmbedder(cfg RemoteConfig, opts ...RemoteOption) *RemoteEmbedder {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		key = "none"
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	e := &RemoteEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed returns the embedding for text, or the fallback vector on failure.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.request(ctx, []string{text})
	if err != nil || len(vecs) == 0 {
		if e.logger != nil {
			e.logger.Warn("embedding request failed, using fallback vector", zap.Error(err))
		}
		return FallbackVector(text, e.dimensions), nil
	}
	return vecs[0], nil
}

// EmbedBatch returns embeddings for all texts. A failed batch request falls
// back to per-text requests; texts that still fail get fallback vectors, so
// the result always has len(texts) entries of the configured dimension.
func (e *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.request(ctx, texts)
	if err == nil && len(vecs) == len(texts) {
		return vecs, nil
	}
	if e.logger != nil {
		e.logger.Warn("batch embedding failed, falling back to per-text requests",
			zap.Int("batch_size", len(texts)), zap.Error(err))
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, embedErr := e.Embed(ctx, text)
		if embedErr != nil {
			vec = FallbackVector(text, e.dimensions)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *RemoteEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *RemoteEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for RemoteEmbedder.
func (e *RemoteEmbedder) Close() error {
	return nil
}

// FallbackVector returns a deterministic unit-length vector derived from the
// text hash. Empty texts and failed embedding requests map here so that index
// positions stay aligned without aborting a build.
func FallbackVector(text string, dimensions int) []float32 {
	h := HashString(text)
	vec := make([]float32, dimensions)
	for i := 0; i < dimensions; i++ {
		vec[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range vec {
			vec[i] *= float32(norm)
		}
	}
	return vec
}
