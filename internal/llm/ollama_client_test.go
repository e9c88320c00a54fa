package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/csheth/lectern/internal/profile"
)

func TestOllamaClientGenerateNotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "qwen3-vl:8b" {
			t.Fatalf("expected model qwen3-vl:8b, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "Document: linear-algebra") {
			t.Fatalf("prompt missing document name: %s", payload.Prompt)
		}
		if !strings.Contains(payload.Prompt, "Page number: 3") {
			t.Fatalf("prompt missing page number: %s", payload.Prompt)
		}
		if !strings.Contains(payload.Prompt, "Prior expertise: novice") {
			t.Fatalf("prompt missing profile: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"{\"markdown\":\"# Eigenvalues\\nNotes body.\",\"topic_labels\":[\"eigenvalues\"],\"page_references\":[2,3]}","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "qwen3-vl:8b",
		client: server.Client(),
	}

	prof := profile.Default()
	prof.PriorExpertise = "novice"
	result, err := client.GenerateNotes(context.Background(), NotesRequest{
		DocumentName: "linear-algebra",
		Page:         3,
		PageText:     "An eigenvalue of a matrix A is a scalar lambda such that...",
		Profile:      prof,
	})
	if err != nil {
		t.Fatalf("generate notes failed: %v", err)
	}
	if !strings.HasPrefix(result.Markdown, "# Eigenvalues") {
		t.Fatalf("unexpected markdown: %s", result.Markdown)
	}
	if len(result.TopicLabels) != 1 || result.TopicLabels[0] != "eigenvalues" {
		t.Fatalf("unexpected labels: %v", result.TopicLabels)
	}
	if len(result.PageReferences) != 2 || result.PageReferences[1] != 3 {
		t.Fatalf("unexpected page references: %v", result.PageReferences)
	}
}

func TestOllamaClientGenerateNotesRejectsEmptyPage(t *testing.T) {
	client := &ollamaClient{host: "http://unused", model: "m", client: http.DefaultClient}
	if _, err := client.GenerateNotes(context.Background(), NotesRequest{Page: 1}); err == nil {
		t.Fatal("expected an error for an empty page")
	}
}

func TestOllamaClientGenerateOverview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !strings.Contains(payload.Prompt, "--- Page 2 ---\nMatrix multiplication composes linear transformations.") {
			t.Fatalf("prompt missing page block: %s", payload.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"{\"content\":\"# Overview\\nA linear algebra textbook.\",\"visualization_type\":\"outline\",\"document_type\":\"textbook\"}","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "qwen3-vl:8b", client: server.Client()}
	result, err := client.GenerateOverview(context.Background(), OverviewRequest{
		DocumentName: "linear-algebra",
		PageTexts: []string{
			"Vectors and linear combinations form the foundation.",
			"Matrix multiplication composes linear transformations.",
		},
		Profile: profile.Default(),
	})
	if err != nil {
		t.Fatalf("generate overview failed: %v", err)
	}
	if !strings.HasPrefix(result.Content, "# Overview") {
		t.Fatalf("unexpected content: %s", result.Content)
	}
	if result.VisualizationType != "outline" || result.DocumentType != "textbook" {
		t.Fatalf("unexpected classification: %+v", result)
	}
}

func TestOllamaClientInlineCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !strings.Contains(payload.Prompt, "Selected passage:\ngradient descent") {
			t.Fatalf("prompt missing selection: %s", payload.Prompt)
		}
		if !strings.Contains(payload.Prompt, "analogy") {
			t.Fatalf("prompt missing directive: %s", payload.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Think of a ball rolling downhill.","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "qwen3-vl:8b", client: server.Client()}
	out, err := client.InlineCommand(context.Background(), CommandAnalogy, "gradient descent", "page context", profile.Default())
	if err != nil {
		t.Fatalf("inline command failed: %v", err)
	}
	if out != "Think of a ball rolling downhill." {
		t.Fatalf("unexpected response: %s", out)
	}
}

func TestOllamaClientInlineCommandRejectsUnknownKind(t *testing.T) {
	client := &ollamaClient{host: "http://unused", model: "m", client: http.DefaultClient}
	if _, err := client.InlineCommand(context.Background(), CommandKind("translate"), "text", "", profile.Default()); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestOllamaClientIntegrateEmphasis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !strings.Contains(payload.Prompt, "Emphasized passage:\nthe key insight") {
			t.Fatalf("prompt missing passage: %s", payload.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"# Notes\n\n> [!emphasis]\n> the key insight\n\nMore prose.","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "qwen3-vl:8b", client: server.Client()}
	out, err := client.IntegrateEmphasis(context.Background(), EmphasisRequest{
		NotesMarkdown: "# Notes\n\nMore prose.",
		Selected:      "the key insight",
		Page:          2,
	})
	if err != nil {
		t.Fatalf("integrate emphasis failed: %v", err)
	}
	if !strings.Contains(out, "[!emphasis]") {
		t.Fatalf("callout missing from result: %s", out)
	}
}

func TestIntegrateEmphasisWithoutNotesSkipsModel(t *testing.T) {
	// No server: the standalone callout path must not issue a request.
	client := &ollamaClient{host: "http://unused", model: "m", client: http.DefaultClient}
	out, err := client.IntegrateEmphasis(context.Background(), EmphasisRequest{Selected: "lone passage"})
	if err != nil {
		t.Fatalf("standalone emphasis failed: %v", err)
	}
	if out != "> [!emphasis]\n> lone passage\n" {
		t.Fatalf("unexpected standalone callout: %q", out)
	}
}
