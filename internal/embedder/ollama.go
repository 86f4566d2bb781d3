package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	ProviderOllama     = "ollama"
	DefaultOllamaModel = "nomic-embed-text"
	DefaultOllamaHost  = "http://localhost:11434"

	// EnvOllamaHost names the environment variable for the Ollama endpoint.
	EnvOllamaHost = "OLLAMA_HOST"
)

// OllamaProvider implements Embedder against a local Ollama instance.
type OllamaProvider struct {
	host       string
	model      string
	dim        int
	httpClient *http.Client
	cache      *Cache
}

// NewOllamaProvider creates an Ollama embedder. An empty host falls back to
// OLLAMA_HOST, then to the default localhost endpoint. The dimension is
// discovered from the first response.
func NewOllamaProvider(host, model string, cache *Cache) (*OllamaProvider, error) {
	if host == "" {
		host = os.Getenv(EnvOllamaHost)
	}
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	return &OllamaProvider{
		host:  host,
		model: model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache: cache,
	}, nil
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if v, ok := p.cache.Get(hash); ok {
			return v, nil
		}
	}

	vector, err := retryWithBackoff(ctx, func() ([]float32, error) {
		return p.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, maxRetries, err)
	}

	if p.dim == 0 {
		p.dim = len(vector)
	}
	if p.cache != nil {
		p.cache.Set(hash, vector)
	}
	return vector, nil
}

// EmbedBatch embeds texts sequentially; the Ollama embeddings endpoint takes
// one prompt per request.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *OllamaProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{
		"model":  p.model,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return apiResp.Embedding, nil
}

func (p *OllamaProvider) Dimension() int {
	return p.dim
}

func (p *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (p *OllamaProvider) Model() string {
	return p.model
}

func (p *OllamaProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
