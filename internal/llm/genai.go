package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GenAIClient generates text with the unified Google GenAI SDK.
type GenAIClient struct {
	model       string
	apiEndpoint string
}

// NewGenAIClient creates a GenAIClient. apiEndpoint may be empty for the default Gemini API.
func NewGenAIClient(model, apiEndpoint string) *GenAIClient {
	return &GenAIClient{model: model, apiEndpoint: apiEndpoint}
}

// GenerateText sends instruction to Gemini using apiKey and returns the trimmed text.
func (c *GenAIClient) GenerateText(ctx context.Context, instruction, apiKey string) (string, error) {
	log.Debug().
		Str("model", c.model).
		Int("instruction_length", len(instruction)).
		Msg("Generating text (genai)")

	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if c.apiEndpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.apiEndpoint}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", &TextGenError{Model: c.model, Err: fmt.Errorf("failed to create genai client: %w", err)}
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(instruction), nil)
	if err != nil {
		return "", &TextGenError{Model: c.model, Err: err}
	}

	text, err := extractText(resp)
	if err != nil {
		return "", &TextGenError{Model: c.model, Err: err}
	}
	logGeminiResponse("GenerateText", text)
	return text, nil
}

// extractText concatenates the text parts of the first candidate and trims it.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return "", errors.New("response blocked by safety filter")
	case genai.FinishReasonRecitation:
		return "", errors.New("response blocked for recitation")
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("candidate has no content (finish reason %q)", candidate.FinishReason)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("empty text in response")
	}
	return text, nil
}
