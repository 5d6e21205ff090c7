package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
)

// OllamaClient implements Provider against a local Ollama-compatible
// inference server (POST /api/generate, non-streaming).
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient builds a client for the given server and model. A zero
// timeout defaults to two minutes, matching typical local-inference latency.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends the prompt and returns the raw model output.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: 0.7, NumPredict: 1024},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.NewExternalAPIError("narrative", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewExternalAPIError("narrative", err)
	}
	if resp.StatusCode >= 400 {
		return "", apperrors.NewExternalAPIError("narrative",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200)))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", apperrors.NewExternalAPIError("narrative", fmt.Errorf("unmarshal response: %w", err))
	}
	if gr.Error != "" {
		return "", apperrors.NewExternalAPIError("narrative", fmt.Errorf("inference error: %s", gr.Error))
	}
	if strings.TrimSpace(gr.Response) == "" {
		return "", apperrors.NewExternalAPIError("narrative", fmt.Errorf("empty response"))
	}
	return gr.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
