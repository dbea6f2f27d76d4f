package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LLaMAClient talks to a LLaMA-compatible HTTP endpoint. Providers differ
// in where they put the generated text, so several shapes are accepted.
type LLaMAClient struct {
	apiKey string
	model  string
	apiURL string
	http   *http.Client
	log    *zap.Logger
}

var _ Client = (*LLaMAClient)(nil)

func NewLLaMAClient(apiKey, model, apiURL string, log *zap.Logger) *LLaMAClient {
	return &LLaMAClient{
		apiKey: apiKey,
		model:  model,
		apiURL: apiURL,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

func (l *LLaMAClient) Generate(ctx context.Context, prompt string) (string, error) {
	if l.apiKey == "" {
		return "", errors.New("missing LLAMA_API_KEY")
	}
	if l.apiURL == "" {
		return "", errors.New("missing LLAMA_API_URL")
	}

	body, err := json.Marshal(map[string]any{
		"model":       l.model,
		"input":       prompt,
		"temperature": 0.1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llama api error: status %d", resp.StatusCode)
	}

	l.log.Debug("llama raw response", zap.Int("length", len(raw)))

	var parsed map[string]any
	if err := DecodeJSON(string(raw), &parsed); err != nil {
		return "", err
	}

	// Variant A
	if v, ok := parsed["output_text"].(string); ok && v != "" {
		return v, nil
	}

	// Variant B
	if v, ok := parsed["generated_text"].(string); ok && v != "" {
		return v, nil
	}

	// Variant C
	if gen, ok := parsed["generation"].(map[string]any); ok {
		if txt, ok := gen["text"].(string); ok && txt != "" {
			return txt, nil
		}
	}

	return "", errors.New("empty llama response")
}
