package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/whisperengine/core/pkg/memory"
)

// DefaultHTTPModel matches the common OpenAI-compatible default, used when
// the caller's configuration doesn't name one.
const DefaultHTTPModel = "text-embedding-3-small"

// NewHTTPProvider builds a Provider against any OpenAI-compatible
// /embeddings HTTP endpoint, per §4.9's embedding contract and the ambient
// rule that the vector engine, LLM provider and embedding backend are all
// out-of-process collaborators reached over HTTP.
func NewHTTPProvider(baseURL, apiKey, model string, headers map[string]string) (*Provider, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("embedding: http provider requires base_url")
	}
	normalizedModel := strings.TrimSpace(model)
	if normalizedModel == "" {
		normalizedModel = DefaultHTTPModel
	}
	endpoint := normalizeEmbeddingsEndpoint(baseURL)

	embedBatch := func(ctx context.Context, texts []string) ([][]float32, error) {
		if len(texts) == 0 {
			return nil, nil
		}
		payload := map[string]any{
			"model": normalizedModel,
			"input": texts,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if strings.TrimSpace(apiKey) != "" {
			req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))
		}
		for key, value := range headers {
			if strings.TrimSpace(value) == "" {
				continue
			}
			req.Header.Set(key, value)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("embedding: http request failed: %s %s", resp.Status, string(data))
		}

		var parsed struct {
			Data []struct {
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, err
		}
		out := make([][]float32, 0, len(parsed.Data))
		for _, entry := range parsed.Data {
			if len(entry.Embedding) != memory.VectorDim {
				return nil, &ErrDim{Got: len(entry.Embedding)}
			}
			out = append(out, Normalize(entry.Embedding))
		}
		return out, nil
	}

	return &Provider{
		id:    "http",
		model: normalizedModel,
		embedQuery: func(ctx context.Context, text string) ([]float32, error) {
			results, err := embedBatch(ctx, []string{text})
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return nil, nil
			}
			return results[0], nil
		},
		embedBatch: embedBatch,
	}, nil
}

// normalizeEmbeddingsEndpoint appends the /embeddings suffix to a bare
// base URL unless the caller already pointed at the full path.
func normalizeEmbeddingsEndpoint(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(trimmed, "/embeddings") {
		return trimmed
	}
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed + "/embeddings"
	}
	return trimmed + "/v1/embeddings"
}
