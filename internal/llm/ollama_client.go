package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/csheth/lectern/internal/profile"
)

type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", c.model)
}

func (c *ollamaClient) GenerateNotes(ctx context.Context, req NotesRequest) (NotesResult, error) {
	prompt, err := notesPrompt(req)
	if err != nil {
		return NotesResult{}, err
	}
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return NotesResult{}, err
	}
	return parseNotesResult(raw)
}

func (c *ollamaClient) GenerateOverview(ctx context.Context, req OverviewRequest) (OverviewResult, error) {
	prompt, err := overviewPrompt(req)
	if err != nil {
		return OverviewResult{}, err
	}
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return OverviewResult{}, err
	}
	return parseOverviewResult(raw)
}

func (c *ollamaClient) InlineCommand(ctx context.Context, kind CommandKind, selected, pageText string, prof profile.Profile) (string, error) {
	prompt, err := commandPrompt(kind, selected, pageText, prof)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, prompt)
}

func (c *ollamaClient) IntegrateEmphasis(ctx context.Context, req EmphasisRequest) (string, error) {
	prompt, standalone, err := emphasisPrompt(req)
	if err != nil {
		return "", err
	}
	if standalone != "" {
		return standalone, nil
	}
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return checkEmphasisResponse(raw)
}

func (c *ollamaClient) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return strings.TrimSpace(parsed.Response), nil
}
