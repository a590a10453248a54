package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicWriter generates reports via the Anthropic messages API.
type AnthropicWriter struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicWriter creates an Anthropic-backed report writer.
func NewAnthropicWriter(apiKey, model string) *AnthropicWriter {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicWriter{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Model returns the model identifier.
func (w *AnthropicWriter) Model() string {
	return w.model
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// WriteReport rewrites the deterministic report into prose.
func (w *AnthropicWriter) WriteReport(reportJSON, format string) (string, error) {
	reqBody := anthropicRequest{
		Model:     w.model,
		MaxTokens: 800,
		System:    reportSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: reportUserPrompt(reportJSON, format)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", w.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse anthropic response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", parsed.Error.Message)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("anthropic returned no text content (status %d)", resp.StatusCode)
	}
	return out, nil
}
