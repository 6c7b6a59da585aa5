package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"resume-matcher/internal/llm"
)

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API.
type Client struct {
	models generator
	model  string
}

// NewClient constructs a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// AnalyzeMatch sends the skill-match prompt in JSON mode and returns the raw answer.
func (c *Client) AnalyzeMatch(ctx context.Context, input llm.AnalyzeInput) (json.RawMessage, error) {
	prompt := llm.BuildPrompt(input)
	llm.CapturePromptHash(ctx, prompt)

	temp := float32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		},
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt.User}},
	}}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("gemini generate: %w: %v", llm.ErrTimeout, err)
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &llm.StatusError{Provider: "gemini", StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini generate: %w", llm.ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("gemini generate: %w", llm.ErrEmptyResponse)
	}
	if resp.UsageMetadata != nil {
		log.Printf("llm response provider=gemini model=%s prompt_version=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
			c.model, prompt.Version, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount, resp.UsageMetadata.TotalTokenCount)
	}
	return json.RawMessage(text), nil
}
