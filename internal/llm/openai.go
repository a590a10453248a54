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

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIWriter generates reports via the OpenAI chat completions API.
type OpenAIWriter struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIWriter creates an OpenAI-backed report writer.
func NewOpenAIWriter(apiKey, model string) *OpenAIWriter {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIWriter{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Model returns the model identifier.
func (w *OpenAIWriter) Model() string {
	return w.model
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// WriteReport rewrites the deterministic report into prose.
func (w *OpenAIWriter) WriteReport(reportJSON, format string) (string, error) {
	reqBody := openAIRequest{
		Model: w.model,
		Messages: []openAIMessage{
			{Role: "system", Content: reportSystemPrompt},
			{Role: "user", Content: reportUserPrompt(reportJSON, format)},
		},
		MaxTokens:   800,
		Temperature: 0.3,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices (status %d)", resp.StatusCode)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
