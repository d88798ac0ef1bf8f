package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestComposeInstruction(t *testing.T) {
	ideas := []string{
		"a glowing jellyfish",
		"一条身上长满发光蘑菇的深海巨龙",
		"100% squid, 'quoted' {braces}",
		"",
	}
	for _, idea := range ideas {
		got := ComposeInstruction(idea)
		if !strings.Contains(got, "'"+idea+"'") {
			t.Errorf("instruction does not embed idea %q verbatim", idea)
		}
		for _, want := range []string{
			"art prompt engineer specializing in marine biology",
			"form, texture, color, bioluminescence, and its environment",
			"single, concise paragraph",
			ImageStyle,
			"without any introductory text",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("instruction missing %q", want)
			}
		}
	}
}

func TestComposeInstruction_Deterministic(t *testing.T) {
	if ComposeInstruction("kraken") != ComposeInstruction("kraken") {
		t.Error("ComposeInstruction is not deterministic")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{
			name: "joins and trims parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "  A bioluminescent "}, {Text: "jellyfish...\n"}}},
			}}},
			want: "A bioluminescent jellyfish...",
		},
		{
			name: "skips thought parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "thinking", Thought: true}, {Text: "prompt"}}},
			}}},
			want: "prompt",
		},
		{name: "nil response", resp: nil, wantErr: "empty response"},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: "no candidates"},
		{
			name: "safety",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				FinishReason: genai.FinishReasonSafety,
			}}},
			wantErr: "safety",
		},
		{
			name:    "no content",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}},
			wantErr: "no content",
		},
		{
			name: "whitespace only",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: " \n\t"}}},
			}}},
			wantErr: "empty text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText(tt.resp)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractText: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenAIClient_GenerateText(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("x-goog-api-key") != "test-key" && r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  A bioluminescent jellyfish...  "}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c := NewGenAIClient("gemini-1.5-flash", srv.URL)
	got, err := c.GenerateText(context.Background(), ComposeInstruction("a glowing jellyfish"), "test-key")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "A bioluminescent jellyfish..." {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(gotPath, "gemini-1.5-flash:generateContent") {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestGenAIClient_GenerateText_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	c := NewGenAIClient("gemini-1.5-flash", srv.URL)
	_, err := c.GenerateText(context.Background(), "instruction", "bad-key")

	var textErr *TextGenError
	if !errors.As(err, &textErr) {
		t.Fatalf("expected *TextGenError, got %T: %v", err, err)
	}
	if textErr.Model != "gemini-1.5-flash" {
		t.Errorf("Model = %q", textErr.Model)
	}
}

func TestNewTextGenerator(t *testing.T) {
	g, err := NewTextGenerator("", "m", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(*GenAIClient); !ok {
		t.Errorf("default backend = %T, want *GenAIClient", g)
	}

	g, err = NewTextGenerator(BackendLangChain, "m", "http://localhost:31300/gemini")
	if err != nil {
		t.Fatal(err)
	}
	lc, ok := g.(*LangChainClient)
	if !ok {
		t.Fatalf("langchain backend = %T", g)
	}
	if lc.httpClient == nil {
		t.Error("custom endpoint should install rewriting http client")
	}

	if _, err := NewTextGenerator("openai", "m", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestEndpointRoundTripper(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	}))
	defer srv.Close()

	client := httpClientForEndpoint(srv.URL + "/gemini/")
	if client == nil {
		t.Fatal("expected client")
	}
	resp, err := client.Get("https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?alt=json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotPath != "/gemini/v1beta/models/m:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "alt=json" {
		t.Errorf("query = %q", gotQuery)
	}
}
