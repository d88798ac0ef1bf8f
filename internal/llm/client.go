package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxGeminiResponseLogBytes is the max length of a Gemini response body to log in full (to avoid huge logs).
const maxGeminiResponseLogBytes = 8192

// Text generation backends selectable via TEXT_BACKEND.
const (
	BackendGenAI     = "genai"
	BackendLangChain = "langchain"
)

// TextGenerator turns an instruction into a single trimmed text completion.
type TextGenerator interface {
	GenerateText(ctx context.Context, instruction, apiKey string) (string, error)
}

// TextGenError is returned for every text generation failure: transport,
// authentication, blocked or empty responses.
type TextGenError struct {
	Model string
	Err   error
}

func (e *TextGenError) Error() string {
	return fmt.Sprintf("gemini %s: %v", e.Model, e.Err)
}

func (e *TextGenError) Unwrap() error { return e.Err }

// NewTextGenerator returns the client for backend.
// apiEndpoint: optional Gemini API base URL (e.g. http://host.docker.internal:31300/gemini).
func NewTextGenerator(backend, model, apiEndpoint string) (TextGenerator, error) {
	switch backend {
	case "", BackendGenAI:
		return NewGenAIClient(model, apiEndpoint), nil
	case BackendLangChain:
		return NewLangChainClient(model, apiEndpoint), nil
	default:
		return nil, fmt.Errorf("unknown text backend %q (want %s or %s)", backend, BackendGenAI, BackendLangChain)
	}
}

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint.
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil || base.Host == "" {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.Host = e.base.Host
	req2.URL.Path = path.Join("/", e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	if req.URL.RawQuery != "" {
		req2.URL.RawQuery = req.URL.RawQuery
	}
	return e.next.RoundTrip(req2)
}

// logGeminiResponse logs Gemini response text, truncating if over maxGeminiResponseLogBytes.
func logGeminiResponse(caller, raw string) {
	if len(raw) <= maxGeminiResponseLogBytes {
		log.Debug().Str("caller", caller).Str("gemini_response", raw).Msg("Gemini response")
		return
	}
	log.Debug().
		Str("caller", caller).
		Str("gemini_response", raw[:maxGeminiResponseLogBytes]+"... [truncated]").
		Int("gemini_response_len", len(raw)).
		Msg("Gemini response")
}
