package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"resume-matcher/internal/llm"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// AnalyzeMatch sends the skill-match prompt and returns the model's JSON answer.
func (c *Client) AnalyzeMatch(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	prompt := llm.BuildPrompt(input)
	llm.CapturePromptHash(ctx, prompt)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if supportsZeroTemperature(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("openai request: %w: %v", llm.ErrTimeout, err)
		}
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai read body: %w", err)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)
	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(string(body))
		if parseErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &llm.StatusError{Provider: "openai", StatusCode: resp.StatusCode, Message: msg}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("openai response parse: %w", parseErr)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("openai response empty content: %w", llm.ErrEmptyResponse)
	}
	logUsage(c.model, prompt.Version, parsed)
	return json.RawMessage(content), nil
}

func logUsage(model, promptVersion string, resp chatResponse) {
	if resp.Usage == nil {
		log.Printf("llm response provider=openai model=%s prompt_version=%s", model, promptVersion)
		return
	}
	log.Printf("llm response provider=openai model=%s prompt_version=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, promptVersion, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

// supportsZeroTemperature reports false for models that reject temperature=0.
// LLM_NO_TEMP0_MODELS adds comma-separated model names to the denylist.
func supportsZeroTemperature(model string) bool {
	if isGPT5(model) {
		return false
	}
	normalized := strings.ToLower(strings.TrimSpace(model))
	for _, denied := range strings.Split(os.Getenv("LLM_NO_TEMP0_MODELS"), ",") {
		if d := strings.ToLower(strings.TrimSpace(denied)); d != "" && d == normalized {
			return false
		}
	}
	return true
}
