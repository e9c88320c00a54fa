package llm

import (
	"net/http"
	"testing"
	"time"
)

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestNewFromEnvPrefersOpenAIWhenKeyPresent(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	client, err := NewFromEnv(Config{Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if client.Name() != "OpenAI (gpt-4o)" {
		t.Fatalf("expected OpenAI backend, got %s", client.Name())
	}
}

func TestNewFromEnvDefaultsToOllama(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_MODEL", "llama3:8b")
	client, err := NewFromEnv(Config{})
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if client.Name() != "Ollama (llama3:8b)" {
		t.Fatalf("expected Ollama backend, got %s", client.Name())
	}
}
