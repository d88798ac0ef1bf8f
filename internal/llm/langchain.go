package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LangChainClient generates text through langchaingo's Google AI model.
type LangChainClient struct {
	model      string
	httpClient *http.Client // nil unless a custom endpoint is configured
}

// NewLangChainClient creates a LangChainClient. apiEndpoint may be empty.
func NewLangChainClient(model, apiEndpoint string) *LangChainClient {
	c := &LangChainClient{model: model}
	if apiEndpoint != "" {
		c.httpClient = httpClientForEndpoint(apiEndpoint)
	}
	return c
}

// GenerateText sends instruction to Gemini using apiKey and returns the trimmed text.
func (c *LangChainClient) GenerateText(ctx context.Context, instruction, apiKey string) (string, error) {
	log.Debug().
		Str("model", c.model).
		Int("instruction_length", len(instruction)).
		Msg("Generating text (langchaingo)")

	opts := []googleai.Option{googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(c.model)}
	if c.httpClient != nil {
		opts = append(opts, googleai.WithHTTPClient(c.httpClient))
	}
	model, err := googleai.New(ctx, opts...)
	if err != nil {
		return "", &TextGenError{Model: c.model, Err: fmt.Errorf("failed to initialize googleai model: %w", err)}
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, model, instruction)
	if err != nil {
		return "", &TextGenError{Model: c.model, Err: err}
	}
	logGeminiResponse("GenerateText", response)

	text := strings.TrimSpace(response)
	if text == "" {
		return "", &TextGenError{Model: c.model, Err: errors.New("empty text in response")}
	}
	return text, nil
}
