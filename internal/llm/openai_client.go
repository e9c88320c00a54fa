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

type openAIClient struct {
	apiKey string
	model  string
	base   string
	client *http.Client
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.model)
}

func (c *openAIClient) GenerateNotes(ctx context.Context, req NotesRequest) (NotesResult, error) {
	prompt, err := notesPrompt(req)
	if err != nil {
		return NotesResult{}, err
	}
	raw, err := c.chat(ctx, prompt)
	if err != nil {
		return NotesResult{}, err
	}
	return parseNotesResult(raw)
}

func (c *openAIClient) GenerateOverview(ctx context.Context, req OverviewRequest) (OverviewResult, error) {
	prompt, err := overviewPrompt(req)
	if err != nil {
		return OverviewResult{}, err
	}
	raw, err := c.chat(ctx, prompt)
	if err != nil {
		return OverviewResult{}, err
	}
	return parseOverviewResult(raw)
}

func (c *openAIClient) InlineCommand(ctx context.Context, kind CommandKind, selected, pageText string, prof profile.Profile) (string, error) {
	prompt, err := commandPrompt(kind, selected, pageText, prof)
	if err != nil {
		return "", err
	}
	return c.chat(ctx, prompt)
}

func (c *openAIClient) IntegrateEmphasis(ctx context.Context, req EmphasisRequest) (string, error) {
	prompt, standalone, err := emphasisPrompt(req)
	if err != nil {
		return "", err
	}
	if standalone != "" {
		return standalone, nil
	}
	raw, err := c.chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	return checkEmphasisResponse(raw)
}

func (c *openAIClient) chat(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a patient study-notes tutor."},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
		return "", fmt.Errorf("openai API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
