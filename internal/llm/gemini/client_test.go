package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"resume-matcher/internal/llm"
)

type fakeModels struct {
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	resp        *genai.GenerateContentResponse
	err         error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestAnalyzeMatchUsesJSONModeAndZeroTemperature(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"jd_technical_skills":["Go"]}`)}
	client := &Client{models: fake, model: "gemini-2.5-flash"}

	raw, err := client.AnalyzeMatch(context.Background(), llm.AnalyzeInput{ResumeText: "my resume", JobDescription: "the job"})
	if err != nil {
		t.Fatalf("AnalyzeMatch: %v", err)
	}
	if string(raw) != `{"jd_technical_skills":["Go"]}` {
		t.Fatalf("unexpected raw %s", raw)
	}
	if fake.gotModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %s", fake.gotModel)
	}
	if fake.gotConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response mime, got %q", fake.gotConfig.ResponseMIMEType)
	}
	if fake.gotConfig.Temperature == nil || *fake.gotConfig.Temperature != 0 {
		t.Fatal("expected temperature 0")
	}
	if fake.gotConfig.SystemInstruction == nil || len(fake.gotConfig.SystemInstruction.Parts) == 0 {
		t.Fatal("expected system instruction")
	}
	user := fake.gotContents[0].Parts[0].Text
	if !strings.Contains(user, "my resume") || !strings.Contains(user, "the job") {
		t.Fatalf("prompt missing inputs: %s", user)
	}
}

func TestAnalyzeMatchEmptyAnswer(t *testing.T) {
	client := &Client{models: &fakeModels{resp: textResponse("  ")}, model: "m"}
	_, err := client.AnalyzeMatch(context.Background(), llm.AnalyzeInput{})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnalyzeMatchWrapsDeadline(t *testing.T) {
	client := &Client{models: &fakeModels{err: context.DeadlineExceeded}, model: "m"}
	_, err := client.AnalyzeMatch(context.Background(), llm.AnalyzeInput{})
	if !errors.Is(err, llm.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "m"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestAnalyzeMatchMapsAPIErrorToStatusError(t *testing.T) {
	cases := []struct {
		name      string
		apiErr    genai.APIError
		transient bool
	}{
		{"precondition", genai.APIError{Code: 400, Status: "FAILED_PRECONDITION", Message: "service unavailable in region"}, false},
		{"overloaded", genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "The model is overloaded"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &Client{models: &fakeModels{err: fmt.Errorf("send: %w", tc.apiErr)}, model: "m"}
			_, err := client.AnalyzeMatch(context.Background(), llm.AnalyzeInput{})
			var statusErr *llm.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Provider != "gemini" || statusErr.StatusCode != tc.apiErr.Code {
				t.Fatalf("unexpected status error %+v", statusErr)
			}
			if statusErr.Transient() != tc.transient {
				t.Fatalf("Transient() = %v, want %v", statusErr.Transient(), tc.transient)
			}
		})
	}
}
