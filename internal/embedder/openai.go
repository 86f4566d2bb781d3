package embedder

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenAI     = "openai"
	DefaultOpenAIModel = "text-embedding-3-small"

	// EnvOpenAIAPIKey names the environment variable holding the API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// openAIDimensions maps known models to their embedding dimensions.
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIProvider implements Embedder using the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dim    int
	cache  *Cache
}

// NewOpenAIProvider creates an OpenAI embedder. An empty apiKey falls back to
// the OPENAI_API_KEY environment variable; an empty model uses
// text-embedding-3-small.
func NewOpenAIProvider(apiKey, model string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrUnsupportedProvider, EnvOpenAIAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	dim, ok := openAIDimensions[model]
	if !ok {
		dim = openAIDimensions[DefaultOpenAIModel]
	}

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		dim:    dim,
		cache:  cache,
	}, nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if v, ok := o.cache.Get(hash); ok {
			return v, nil
		}
	}

	vectors, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors, err := retryWithBackoff(ctx, func() ([][]float32, error) {
		return o.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, maxRetries, err)
	}

	if o.cache != nil {
		for i, v := range vectors {
			o.cache.Set(ComputeHash(texts[i]), v)
		}
	}
	return vectors, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// The API may return data out of order; the Index field is authoritative.
	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		v := make([]float32, len(data.Embedding))
		for i, x := range data.Embedding {
			v[i] = float32(x)
		}
		vectors[data.Index] = v
	}
	return vectors, nil
}

func (o *OpenAIProvider) Dimension() int {
	return o.dim
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	return nil
}
